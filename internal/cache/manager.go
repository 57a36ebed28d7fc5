package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"logistics-ocr/internal/database"
)

// CachedText is an in-memory OCR result with expiry
type CachedText struct {
	Text      string
	Provider  string
	ExpiresAt time.Time
}

// IsExpired checks if the cached text has expired
func (c *CachedText) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Manager keeps OCR provider output in memory and in SQLite, keyed by the
// hash of the image bytes, so the same photo never costs two provider calls
type Manager struct {
	store    *database.OCRCacheStore
	memory   sync.Map // map[string]*CachedText
	disabled bool
	ttl      time.Duration
	logger   *slog.Logger

	// Cleanup goroutine control
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a new cache manager
func NewManager(store *database.OCRCacheStore, disabled bool, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	manager := &Manager{
		store:    store,
		disabled: disabled,
		ttl:      ttl,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if !disabled {
		if err := manager.loadFromDatabase(); err != nil {
			logger.Warn("Failed to load OCR cache from database", "error", err)
		}

		go manager.cleanupLoop()
	}

	return manager
}

// Get returns cached text for an image hash. ok is false on a miss.
func (m *Manager) Get(imageHash string) (text string, ok bool, err error) {
	if m.disabled {
		return "", false, nil
	}

	if value, found := m.memory.Load(imageHash); found {
		cached := value.(*CachedText)
		if !cached.IsExpired() {
			return cached.Text, true, nil
		}
		m.memory.Delete(imageHash)
	}

	entry, err := m.store.Get(imageHash)
	if err != nil {
		return "", false, fmt.Errorf("failed to get from database cache: %w", err)
	}
	if entry == nil {
		return "", false, nil
	}

	m.memory.Store(imageHash, &CachedText{
		Text:      entry.Text,
		Provider:  entry.Provider,
		ExpiresAt: entry.ExpiresAt,
	})

	return entry.Text, true, nil
}

// Set stores text in both the database and memory
func (m *Manager) Set(imageHash, text, provider string) error {
	if m.disabled {
		return nil
	}

	if err := m.store.Set(imageHash, text, provider, m.ttl); err != nil {
		return fmt.Errorf("failed to store in database cache: %w", err)
	}

	m.memory.Store(imageHash, &CachedText{
		Text:      text,
		Provider:  provider,
		ExpiresAt: time.Now().Add(m.ttl),
	})

	return nil
}

// Delete removes cached text from both memory and database
func (m *Manager) Delete(imageHash string) error {
	if m.disabled {
		return nil
	}

	m.memory.Delete(imageHash)

	if err := m.store.Delete(imageHash); err != nil {
		return fmt.Errorf("failed to delete from database cache: %w", err)
	}

	return nil
}

// loadFromDatabase warms memory with every non-expired database entry
func (m *Manager) loadFromDatabase() error {
	entries, err := m.store.LoadAll()
	if err != nil {
		return err
	}

	for hash, entry := range entries {
		m.memory.Store(hash, &CachedText{
			Text:      entry.Text,
			Provider:  entry.Provider,
			ExpiresAt: entry.ExpiresAt,
		})
	}

	if len(entries) > 0 {
		m.logger.Info("Loaded OCR cache entries from database", "count", len(entries))
	}

	return nil
}

func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup removes expired entries from both memory and database
func (m *Manager) cleanup() {
	memoryCount := 0
	m.memory.Range(func(key, value interface{}) bool {
		if value.(*CachedText).IsExpired() {
			m.memory.Delete(key)
			memoryCount++
		}
		return true
	})

	removed, err := m.store.CleanupExpired()
	if err != nil {
		m.logger.Warn("Failed to clean up expired OCR cache entries", "error", err)
	}

	if memoryCount > 0 || removed > 0 {
		m.logger.Debug("Cleaned up expired OCR cache entries", "memory", memoryCount, "database", removed)
	}
}

// GetStats returns cache statistics
func (m *Manager) GetStats() (CacheStats, error) {
	stats := CacheStats{
		Disabled: m.disabled,
		TTL:      m.ttl,
	}

	if m.disabled {
		return stats, nil
	}

	m.memory.Range(func(key, value interface{}) bool {
		stats.MemoryTotal++
		if value.(*CachedText).IsExpired() {
			stats.MemoryExpired++
		}
		return true
	})

	dbTotal, dbExpired, err := m.store.GetStats()
	if err != nil {
		return stats, fmt.Errorf("failed to get database stats: %w", err)
	}

	stats.DatabaseTotal = dbTotal
	stats.DatabaseExpired = dbExpired

	return stats, nil
}

// Close shuts down the cleanup goroutine
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Disabled        bool          `json:"disabled"`
	TTL             time.Duration `json:"ttl"`
	MemoryTotal     int           `json:"memory_total"`
	MemoryExpired   int           `json:"memory_expired"`
	DatabaseTotal   int           `json:"database_total"`
	DatabaseExpired int           `json:"database_expired"`
}
