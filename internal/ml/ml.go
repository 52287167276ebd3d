// Package ml implements the small tabular models served by predictd and
// their JSON artifact format. Models are fitted in-process; there is no
// external runtime.
package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Regressor is a model producing a scalar prediction.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) (float64, error)
}

// Classifier is a model producing an integer class label.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(x []float64) (int, error)
}

// Algorithm identifiers used in config, artifact files, and file names.
const (
	AlgorithmDecisionTree     = "decision_tree"
	AlgorithmRandomForest     = "random_forest"
	AlgorithmLinearRegression = "linear_regression"
)

var displayNames = map[string]string{
	AlgorithmDecisionTree:     "DecisionTree",
	AlgorithmRandomForest:     "RandomForest",
	AlgorithmLinearRegression: "LinearRegression",
}

// DisplayName returns the human-facing model name for an algorithm id.
func DisplayName(algorithm string) string {
	if n, ok := displayNames[algorithm]; ok {
		return n
	}
	return algorithm
}

// Options carries hyperparameters shared across algorithms. Zero values
// select per-algorithm defaults.
type Options struct {
	MaxDepth int
	Trees    int
	Seed     int64
}

// NewRegressor constructs an unfitted regressor for the given algorithm.
func NewRegressor(algorithm string, opt Options) (Regressor, error) {
	switch algorithm {
	case AlgorithmDecisionTree:
		return &TreeRegressor{MaxDepth: opt.MaxDepth}, nil
	case AlgorithmLinearRegression:
		return &LinearRegression{}, nil
	default:
		return nil, fmt.Errorf("unsupported regression algorithm: %s", algorithm)
	}
}

// NewClassifier constructs an unfitted classifier for the given algorithm.
func NewClassifier(algorithm string, opt Options) (Classifier, error) {
	switch algorithm {
	case AlgorithmDecisionTree:
		return &TreeClassifier{MaxDepth: opt.MaxDepth}, nil
	case AlgorithmRandomForest:
		return &ForestClassifier{MaxDepth: opt.MaxDepth, NumTrees: opt.Trees, Seed: opt.Seed}, nil
	default:
		return nil, fmt.Errorf("unsupported classification algorithm: %s", algorithm)
	}
}

// Artifact is the on-disk envelope for a fitted model.
type Artifact struct {
	Algorithm  string             `json:"algorithm"`
	ModelType  string             `json:"model_type"`
	TrainedAt  time.Time          `json:"trained_at"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	DataPoints int                `json:"data_points,omitempty"`
	Model      json.RawMessage    `json:"model"`
}

// NewArtifact wraps a fitted model into an envelope ready for SaveArtifact.
func NewArtifact(algorithm, modelType string, model any) (Artifact, error) {
	raw, err := json.Marshal(model)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Algorithm: algorithm,
		ModelType: modelType,
		TrainedAt: time.Now().UTC(),
		Model:     raw,
	}, nil
}

// Regressor unmarshals the embedded model as a regressor.
func (a Artifact) Regressor() (Regressor, error) {
	m, err := NewRegressor(a.Algorithm, Options{})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(a.Model, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Classifier unmarshals the embedded model as a classifier.
func (a Artifact) Classifier() (Classifier, error) {
	m, err := NewClassifier(a.Algorithm, Options{})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(a.Model, m); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveArtifact writes the artifact atomically: a temp file in the target
// directory followed by a rename, so a concurrent reader never observes a
// partially written file.
func SaveArtifact(path string, a Artifact) error {
	if len(a.Model) == 0 {
		return errors.New("artifact has no model payload")
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadArtifact reads an artifact envelope from disk.
func LoadArtifact(path string) (Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, err
	}
	var a Artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return Artifact{}, err
	}
	if a.Algorithm == "" || len(a.Model) == 0 {
		return Artifact{}, fmt.Errorf("malformed artifact: %s", path)
	}
	return a, nil
}
