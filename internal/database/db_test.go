package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestOpen_MigratesIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.IsHealthy())
}

func TestDetectionStore(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	detections := []*Detection{
		{ID: "a", Kind: "seal", Value: "TDM38816", Valid: true, Confidence: 0.95, ReasonCode: "detectado", RawText: "PRECINTO TDM-388-16", Source: "text", CreatedAt: base},
		{ID: "b", Kind: "plate", Value: "XYZ789", Valid: true, Confidence: 1, RawText: "placa XYZ-789", Source: "ocr", CreatedAt: base.Add(time.Minute)},
		{ID: "c", Kind: "seal", Value: "", Confidence: 0.25, ReasonCode: "confianza_baja", RawText: "PLACA ABC123", Source: "cache", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, d := range detections {
		require.NoError(t, db.Detections.Create(d))
	}

	t.Run("GetByID", func(t *testing.T) {
		got, err := db.Detections.GetByID("a")
		require.NoError(t, err)
		assert.Equal(t, "seal", got.Kind)
		assert.Equal(t, "TDM38816", got.Value)
		assert.True(t, got.Valid)
		assert.InDelta(t, 0.95, got.Confidence, 1e-9)
		assert.Equal(t, "[]", got.Candidates)
		assert.True(t, base.Equal(got.CreatedAt))
	})

	t.Run("GetByID missing", func(t *testing.T) {
		_, err := db.Detections.GetByID("missing")
		assert.True(t, errors.Is(err, sql.ErrNoRows))
	})

	t.Run("List newest first", func(t *testing.T) {
		got, err := db.Detections.List("", 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("List by kind with limit", func(t *testing.T) {
		got, err := db.Detections.List("seal", 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].ID)
	})

	t.Run("List unknown kind", func(t *testing.T) {
		got, err := db.Detections.List("container", 10)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("CountByKind", func(t *testing.T) {
		counts, err := db.Detections.CountByKind()
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"seal": 2, "plate": 1}, counts)
	})

	t.Run("Create requires ID", func(t *testing.T) {
		assert.Error(t, db.Detections.Create(&Detection{Kind: "seal", Source: "text"}))
	})

	t.Run("Create rejects duplicate ID", func(t *testing.T) {
		assert.Error(t, db.Detections.Create(&Detection{ID: "a", Kind: "seal", Source: "text"}))
	})
}

func TestUsageStore(t *testing.T) {
	db := setupTestDB(t)

	count, err := db.Usage.Get("2024-03")
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 1; i <= 3; i++ {
		count, err = db.Usage.Increment("2024-03")
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	count, err = db.Usage.Increment("2024-04")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = db.Usage.Get("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-03", MonthKey(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)))
	// Buckets are UTC months
	loc := time.FixedZone("UTC-5", -5*3600)
	assert.Equal(t, "2024-04", MonthKey(time.Date(2024, 3, 31, 22, 0, 0, 0, loc)))
}

func TestOCRCacheStore(t *testing.T) {
	db := setupTestDB(t)

	t.Run("SetAndGet", func(t *testing.T) {
		entry, err := db.OCRCache.Get("hash-1")
		require.NoError(t, err)
		assert.Nil(t, entry)

		require.NoError(t, db.OCRCache.Set("hash-1", "PRECINTO TDM38816", "gemini", time.Hour))

		entry, err = db.OCRCache.Get("hash-1")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "PRECINTO TDM38816", entry.Text)
		assert.Equal(t, "gemini", entry.Provider)
		assert.True(t, entry.ExpiresAt.After(entry.CachedAt))
	})

	t.Run("Replace", func(t *testing.T) {
		require.NoError(t, db.OCRCache.Set("hash-1", "SELLO XY98765", "gemini", time.Hour))

		entry, err := db.OCRCache.Get("hash-1")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "SELLO XY98765", entry.Text)
	})

	t.Run("Expired entry is a miss", func(t *testing.T) {
		require.NoError(t, db.OCRCache.Set("hash-2", "old", "gemini", -time.Minute))

		entry, err := db.OCRCache.Get("hash-2")
		require.NoError(t, err)
		assert.Nil(t, entry)

		total, _, err := db.OCRCache.GetStats()
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("CleanupExpired and LoadAll", func(t *testing.T) {
		require.NoError(t, db.OCRCache.Set("hash-3", "old", "gemini", -time.Minute))

		total, expired, err := db.OCRCache.GetStats()
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, 1, expired)

		removed, err := db.OCRCache.CleanupExpired()
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		entries, err := db.OCRCache.LoadAll()
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Contains(t, entries, "hash-1")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.OCRCache.Delete("hash-1"))

		entry, err := db.OCRCache.Get("hash-1")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}
