// Package migrations ships the SQL migrations inside the binaries that apply them.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
