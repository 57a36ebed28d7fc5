package database

import (
	"database/sql"
	"fmt"
	"time"
)

// MonthKey formats the usage bucket for t, e.g. "2024-03"
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// UsageStore tracks OCR provider calls per calendar month
type UsageStore struct {
	db *sql.DB
}

// NewUsageStore creates a new usage store
func NewUsageStore(db *sql.DB) *UsageStore {
	return &UsageStore{db: db}
}

// Increment adds one call to the month and returns the new total
func (u *UsageStore) Increment(month string) (int, error) {
	query := `INSERT INTO ocr_usage (month, count, updated_at) VALUES (?, 1, CURRENT_TIMESTAMP)
			  ON CONFLICT(month) DO UPDATE SET count = count + 1, updated_at = CURRENT_TIMESTAMP`

	if _, err := u.db.Exec(query, month); err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}

	return u.Get(month)
}

// Get returns the number of calls recorded for the month
func (u *UsageStore) Get(month string) (int, error) {
	var count int
	err := u.db.QueryRow(`SELECT count FROM ocr_usage WHERE month = ?`, month).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get usage: %w", err)
	}
	return count, nil
}
