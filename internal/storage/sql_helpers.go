package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/pomolit/internal/constants"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}

// NullableString converts a string to sql.NullString for optional fields.
// Empty strings are treated as NULL.
func NullableString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// BoolToInt stores booleans as 0/1 integers.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// FormatTimestamp renders a timestamp the way it is stored at rest (UTC, RFC3339 with nanoseconds).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// ParseTimestamp parses a stored timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// NullableTimestamp converts an optional timestamp to sql.NullString.
func NullableTimestamp(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTimestamp(*t), Valid: true}
}

// EncodeList serializes a string list to JSON text. Nil and empty lists are stored as NULL.
func EncodeList(items []string) (sql.NullString, error) {
	if len(items) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode list: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// DecodeList parses JSON text written by EncodeList, preserving order.
func DecodeList(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw.String), &items); err != nil {
		return nil, fmt.Errorf("failed to decode list %q: %w", raw.String, err)
	}
	return items, nil
}
