// Package predlog owns durable prediction logging: one SQLite row and one
// NDJSON line per accepted prediction, plus the training_log table the
// performance monitor reads.
package predlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"predictd/internal/domain"
)

// Store wraps the SQLite database. SQLite has a single writer; inserts are
// serialized through mu while reads run concurrently.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS housinglogs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT,
    inputs TEXT,
    prediction TEXT
);
CREATE TABLE IF NOT EXISTS irislogs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT,
    inputs TEXT,
    prediction TEXT
);
CREATE TABLE IF NOT EXISTS training_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_type VARCHAR(20),
    model_name VARCHAR(50),
    metrics TEXT,
    trained_at DATETIME,
    data_points INTEGER
);
`

// Open creates or opens the prediction log database and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping reports whether the database still answers.
func (s *Store) Ping() bool { return s.db.Ping() == nil }

func tableFor(modelType string) (string, error) {
	switch modelType {
	case domain.Housing:
		return "housinglogs", nil
	case domain.Iris:
		return "irislogs", nil
	default:
		return "", fmt.Errorf("unknown model type: %s", modelType)
	}
}

func (s *Store) insertPrediction(modelType, timestamp, inputs, prediction string) error {
	table, err := tableFor(modelType)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		"INSERT INTO "+table+" (timestamp, inputs, prediction) VALUES (?, ?, ?)",
		timestamp, inputs, prediction)
	return err
}

// Count returns the number of recorded predictions for a model type.
func (s *Store) Count(modelType string) (int, error) {
	table, err := tableFor(modelType)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Average returns the mean recorded prediction value; ok is false when no
// rows exist.
func (s *Store) Average(modelType string) (avg float64, ok bool, err error) {
	table, terr := tableFor(modelType)
	if terr != nil {
		return 0, false, terr
	}
	var v sql.NullFloat64
	if err := s.db.QueryRow("SELECT AVG(CAST(prediction AS REAL)) FROM " + table).Scan(&v); err != nil {
		return 0, false, err
	}
	return v.Float64, v.Valid, nil
}

// InsertTrainingMetrics records one completed training run.
func (s *Store) InsertTrainingMetrics(modelType, modelName string, metrics map[string]float64, trainedAt time.Time, dataPoints int) error {
	payload, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`
        INSERT INTO training_log (model_type, model_name, metrics, trained_at, data_points)
        VALUES (?, ?, ?, ?, ?)`,
		modelType, modelName, string(payload), trainedAt.UTC(), dataPoints)
	return err
}

// LatestTrainingMetrics returns the most recent training_log entry for a
// model type; ok is false when none exists.
func (s *Store) LatestTrainingMetrics(modelType string) (modelName string, metrics map[string]float64, trainedAt time.Time, ok bool, err error) {
	var payload string
	row := s.db.QueryRow(`
        SELECT model_name, metrics, trained_at
        FROM training_log
        WHERE model_type = ?
        ORDER BY trained_at DESC, id DESC
        LIMIT 1`, modelType)
	switch err = row.Scan(&modelName, &payload, &trainedAt); err {
	case nil:
	case sql.ErrNoRows:
		return "", nil, time.Time{}, false, nil
	default:
		return "", nil, time.Time{}, false, err
	}
	if err = json.Unmarshal([]byte(payload), &metrics); err != nil {
		return "", nil, time.Time{}, false, err
	}
	return modelName, metrics, trainedAt, true, nil
}
