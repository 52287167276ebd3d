package predlog

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// loggingError wraps a failure of either durable write. The prediction path
// treats it as non-fatal: log and continue, never block the response.
type loggingError struct{ err error }

func (e loggingError) Error() string { return "prediction logging failed: " + e.err.Error() }
func (e loggingError) Unwrap() error { return e.err }

// IsLoggingError reports whether err came from Record.
func IsLoggingError(err error) bool {
	_, ok := err.(loggingError)
	return ok
}

// captureWriter remembers the last write error; zerolog itself never
// returns one to the caller.
type captureWriter struct {
	w   io.Writer
	err error
}

func (c *captureWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if err != nil {
		c.err = err
	}
	return n, err
}

// Recorder appends accepted predictions for one model type to an NDJSON
// file and a SQLite table. Both writes must succeed or Record fails.
type Recorder struct {
	store     *Store
	modelType string
	file      *os.File
	cw        *captureWriter
	log       zerolog.Logger
	mu        sync.Mutex
}

// NewRecorder opens (appending) the model type's prediction log file under
// dir, e.g. logs/housing_predictions.log.
func NewRecorder(store *Store, modelType, dir string) (*Recorder, error) {
	if _, err := tableFor(modelType); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, modelType+"_predictions.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	cw := &captureWriter{w: f}
	return &Recorder{
		store:     store,
		modelType: modelType,
		file:      f,
		cw:        cw,
		log:       zerolog.New(cw).With().Timestamp().Str("model", modelType).Logger(),
	}, nil
}

// Record appends one prediction. The record is append-only: no
// deduplication, one row and one line per accepted request.
func (r *Recorder) Record(inputs map[string]float64, prediction string) error {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return loggingError{err: err}
	}
	now := time.Now().UTC()

	r.mu.Lock()
	r.cw.err = nil
	r.log.Info().
		RawJSON("inputs", inputsJSON).
		Str("prediction", prediction).
		Msg("prediction")
	fileErr := r.cw.err
	r.mu.Unlock()
	if fileErr != nil {
		return loggingError{err: fileErr}
	}

	if err := r.store.insertPrediction(r.modelType, now.Format(time.RFC3339Nano), string(inputsJSON), prediction); err != nil {
		return loggingError{err: err}
	}
	return nil
}

// ModelType returns the model type this recorder serves.
func (r *Recorder) ModelType() string { return r.modelType }

func (r *Recorder) Close() error { return r.file.Close() }
