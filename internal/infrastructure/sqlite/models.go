package sqlite

import (
	"time"
)

// Timestamps are stored as Unix seconds.

func toUnix(t time.Time) int64 {
	return t.Unix()
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// likePattern wraps q for a substring LIKE match.
func likePattern(q string) string {
	return "%" + q + "%"
}
