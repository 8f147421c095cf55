package store

import (
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var (
	// ErrNotFound is returned when a batch or result does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTotalAlreadySet is returned on a second SetTotal for the same batch.
	ErrTotalAlreadySet = errors.New("batch total already set")
	// ErrNotProcessing is returned when a batch has already reached a terminal status.
	ErrNotProcessing = errors.New("batch is not processing")
	// ErrInvalidProgress is returned for a processed count that would decrease or exceed total.
	ErrInvalidProgress = errors.New("invalid progress value")
)

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func formatNullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// affected reports whether res changed at least one row
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// builder is shared by the stores; SQLite uses "?" placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
