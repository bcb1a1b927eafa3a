package app

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const dbApplicationName = "matchwatch"

// OverridesDSN is the manual-override database connection string prepared for lib/pq, plus the
// parts that are safe to log.
type OverridesDSN struct {
	Conn   string
	Host   string
	DBName string
}

// ParseOverridesDSN accepts both postgres URLs and key=value strings. Parameters the operator set
// explicitly are never overwritten.
func ParseOverridesDSN(raw string, disablePreparedBinaryResult bool) (OverridesDSN, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return OverridesDSN{}, errors.New("DB_URL is required")
	}

	defaults := map[string]string{"application_name": dbApplicationName}
	if disablePreparedBinaryResult {
		defaults["disable_prepared_binary_result"] = "yes"
	}

	if strings.Contains(raw, "://") {
		return parseURLDSN(raw, defaults)
	}
	return parseKeywordDSN(raw, defaults)
}

func parseURLDSN(raw string, defaults map[string]string) (OverridesDSN, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return OverridesDSN{}, fmt.Errorf("parse DB_URL: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return OverridesDSN{}, fmt.Errorf("DB_URL scheme %q is not postgres", parsed.Scheme)
	}

	query := parsed.Query()
	for key, value := range defaults {
		if query.Get(key) == "" {
			query.Set(key, value)
		}
	}
	parsed.RawQuery = query.Encode()

	return OverridesDSN{
		Conn:   parsed.String(),
		Host:   parsed.Hostname(),
		DBName: strings.TrimPrefix(parsed.Path, "/"),
	}, nil
}

func parseKeywordDSN(raw string, defaults map[string]string) (OverridesDSN, error) {
	out := OverridesDSN{Conn: raw}
	seen := make(map[string]bool)
	for _, token := range strings.Fields(raw) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return OverridesDSN{}, fmt.Errorf("DB_URL token %q is not key=value", token)
		}
		value = strings.Trim(value, `"'`)
		seen[key] = true
		switch key {
		case "host":
			out.Host = value
		case "dbname":
			out.DBName = value
		}
	}

	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		if !seen[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		out.Conn += " " + key + "=" + defaults[key]
	}
	return out, nil
}
