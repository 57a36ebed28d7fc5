package database

import (
	"database/sql"
	"fmt"
	"time"
)

// OCRCacheEntry is provider output cached by image content hash
type OCRCacheEntry struct {
	ImageHash string    `json:"image_hash"`
	Text      string    `json:"text"`
	Provider  string    `json:"provider"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OCRCacheStore handles database operations for the OCR text cache
type OCRCacheStore struct {
	db *sql.DB
}

// NewOCRCacheStore creates a new OCR cache store
func NewOCRCacheStore(db *sql.DB) *OCRCacheStore {
	return &OCRCacheStore{db: db}
}

// Get retrieves cached text for an image hash. A miss returns nil, nil.
func (c *OCRCacheStore) Get(imageHash string) (*OCRCacheEntry, error) {
	query := `SELECT image_hash, text, provider, cached_at, expires_at FROM ocr_cache WHERE image_hash = ?`

	var entry OCRCacheEntry
	err := c.db.QueryRow(query, imageHash).Scan(&entry.ImageHash, &entry.Text,
		&entry.Provider, &entry.CachedAt, &entry.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached text: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) {
		// Expired entries are dropped and reported as a miss
		if err := c.Delete(imageHash); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &entry, nil
}

// Set stores extracted text with the given TTL
func (c *OCRCacheStore) Set(imageHash, text, provider string, ttl time.Duration) error {
	now := time.Now().UTC()

	query := `INSERT OR REPLACE INTO ocr_cache (image_hash, text, provider, cached_at, expires_at)
			  VALUES (?, ?, ?, ?, ?)`

	if _, err := c.db.Exec(query, imageHash, text, provider, now, now.Add(ttl)); err != nil {
		return fmt.Errorf("failed to cache text: %w", err)
	}

	return nil
}

// Delete removes the cached entry for an image hash
func (c *OCRCacheStore) Delete(imageHash string) error {
	if _, err := c.db.Exec(`DELETE FROM ocr_cache WHERE image_hash = ?`, imageHash); err != nil {
		return fmt.Errorf("failed to delete cached entry: %w", err)
	}
	return nil
}

// CleanupExpired removes every expired entry and returns how many were removed
func (c *OCRCacheStore) CleanupExpired() (int64, error) {
	result, err := c.db.Exec(`DELETE FROM ocr_cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return removed, nil
}

// LoadAll loads all non-expired entries, used to warm the in-memory cache
func (c *OCRCacheStore) LoadAll() (map[string]*OCRCacheEntry, error) {
	query := `SELECT image_hash, text, provider, cached_at, expires_at FROM ocr_cache WHERE expires_at > ?`

	rows, err := c.db.Query(query, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load cache entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]*OCRCacheEntry)
	for rows.Next() {
		var entry OCRCacheEntry
		if err := rows.Scan(&entry.ImageHash, &entry.Text, &entry.Provider,
			&entry.CachedAt, &entry.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entries[entry.ImageHash] = &entry
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache entries: %w", err)
	}

	return entries, nil
}

// GetStats returns the total and expired entry counts
func (c *OCRCacheStore) GetStats() (int, int, error) {
	var total, expired int

	if err := c.db.QueryRow("SELECT COUNT(*) FROM ocr_cache").Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to get total cache entries: %w", err)
	}

	err := c.db.QueryRow("SELECT COUNT(*) FROM ocr_cache WHERE expires_at <= ?", time.Now().UTC()).Scan(&expired)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get expired cache entries: %w", err)
	}

	return total, expired, nil
}
