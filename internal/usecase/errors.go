package usecase

import crerr "github.com/cockroachdb/errors"

// Sentinels the API maps to status codes. Wrap them with fmt.Errorf("%w: ...").
var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
)

// errInconsistent marks a feed answer that contradicts the roster, such as a team overview
// for another club. Such answers are discarded and not counted as failures.
var errInconsistent = crerr.New("inconsistent feed data")

// Values of the error_kind log field. Dashboards and the log mirror key on them.
const (
	errorKindTransient     = "transient"
	errorKindIdentity      = "identity"
	errorKindInconsistency = "inconsistency"
	errorKindUnexpected    = "unexpected"
)
