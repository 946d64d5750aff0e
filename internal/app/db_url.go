package app

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/suwei8/lotto-ai4/internal/config"
)

const memoryScheme = "memory://"

// isMemoryURL selects the in-process repositories instead of Postgres.
func isMemoryURL(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), memoryScheme)
}

// normalizeDBURL adds driver options that are missing from a URL-style DSN.
// Explicit values in the URL always win.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool, connectTimeout time.Duration) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	changed := false
	if disablePreparedBinaryResult && query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		changed = true
	}
	if seconds := int(connectTimeout / time.Second); seconds > 0 && query.Get("connect_timeout") == "" {
		query.Set("connect_timeout", strconv.Itoa(seconds))
		changed = true
	}
	if !changed {
		return raw
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// MigrationURL returns the DSN schema migrations run against, carrying the
// same driver options as the runtime pool.
func MigrationURL(cfg config.Config) (string, error) {
	if isMemoryURL(cfg.DBURL) {
		return "", fmt.Errorf("DB_URL points at the in-memory store, nothing to migrate")
	}
	return normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary, cfg.DBConnectTimeout), nil
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}
