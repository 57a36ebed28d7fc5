package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Detection is a persisted verification outcome
type Detection struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Value      string    `json:"value"`
	Valid      bool      `json:"valid"`
	Confidence float64   `json:"confidence"`
	ReasonCode string    `json:"reason_code"`
	Candidates string    `json:"candidates"` // JSON array of detector candidates
	RawText    string    `json:"raw_text"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// DetectionStore handles database operations for detections
type DetectionStore struct {
	db *sql.DB
}

// NewDetectionStore creates a new detection store
func NewDetectionStore(db *sql.DB) *DetectionStore {
	return &DetectionStore{db: db}
}

const detectionColumns = `id, kind, value, valid, confidence, reason_code, candidates, raw_text, source, created_at`

// Create inserts a detection. The caller assigns the ID.
func (s *DetectionStore) Create(d *Detection) error {
	if d.ID == "" {
		return fmt.Errorf("detection ID cannot be empty")
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.Candidates == "" {
		d.Candidates = "[]"
	}

	query := `INSERT INTO detections (` + detectionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, d.ID, d.Kind, d.Value, d.Valid, d.Confidence,
		d.ReasonCode, d.Candidates, d.RawText, d.Source, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert detection: %w", err)
	}

	return nil
}

// GetByID returns a detection or sql.ErrNoRows
func (s *DetectionStore) GetByID(id string) (*Detection, error) {
	query := `SELECT ` + detectionColumns + ` FROM detections WHERE id = ?`

	d, err := scanDetection(s.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List returns the most recent detections, newest first. An empty kind
// lists every kind.
func (s *DetectionStore) List(kind string, limit int) ([]Detection, error) {
	query := `SELECT ` + detectionColumns + ` FROM detections`
	var args []interface{}

	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}
	defer rows.Close()

	detections := []Detection{}
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating detections: %w", err)
	}

	return detections, nil
}

// CountByKind returns the number of stored detections per kind
func (s *DetectionStore) CountByKind() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM detections GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to count detections: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan detection count: %w", err)
		}
		counts[kind] = count
	}

	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDetection(row rowScanner) (*Detection, error) {
	var d Detection
	err := row.Scan(&d.ID, &d.Kind, &d.Value, &d.Valid, &d.Confidence,
		&d.ReasonCode, &d.Candidates, &d.RawText, &d.Source, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
