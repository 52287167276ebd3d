// Package monitor decides whether a model type needs retraining by
// comparing its latest recorded training metrics against fixed thresholds.
package monitor

import (
	"fmt"
	"time"

	"predictd/internal/domain"
	"predictd/internal/predlog"
)

// Threshold names the metric that gates retraining and its minimum
// acceptable value.
type Threshold struct {
	Metric string
	Min    float64
}

// DefaultThresholds mirror the retraining policy of the training pipeline.
var DefaultThresholds = map[string]Threshold{
	domain.Housing: {Metric: "r2_score", Min: 0.5},
	domain.Iris:    {Metric: "accuracy", Min: 0.9},
}

// Report is the outcome of one evaluation. Derived on demand, never
// persisted.
type Report struct {
	ModelName       string
	Metrics         map[string]float64
	TrainedAt       time.Time
	NeedsRetraining bool
	Reason          string
}

// Monitor reads training_log and applies the threshold policy. Pure reads;
// no side effects.
type Monitor struct {
	store      *predlog.Store
	thresholds map[string]Threshold
}

func New(store *predlog.Store) *Monitor {
	return &Monitor{store: store, thresholds: DefaultThresholds}
}

// NewWithThresholds overrides the default policy, e.g. from config.
func NewWithThresholds(store *predlog.Store, thresholds map[string]Threshold) *Monitor {
	merged := make(map[string]Threshold, len(DefaultThresholds))
	for k, v := range DefaultThresholds {
		merged[k] = v
	}
	for k, v := range thresholds {
		merged[k] = v
	}
	return &Monitor{store: store, thresholds: merged}
}

// Evaluate returns the latest known performance for a model type. A model
// with no recorded metrics needs retraining: nothing has ever vouched for
// it (cold-start policy).
func (m *Monitor) Evaluate(modelType string) (Report, error) {
	th, known := m.thresholds[modelType]
	if !known {
		return Report{}, fmt.Errorf("no threshold policy for model type: %s", modelType)
	}
	name, metrics, trainedAt, ok, err := m.store.LatestTrainingMetrics(modelType)
	if err != nil {
		return Report{}, err
	}
	if !ok {
		return Report{NeedsRetraining: true, Reason: "no_recorded_metrics"}, nil
	}
	report := Report{ModelName: name, Metrics: metrics, TrainedAt: trainedAt}
	value, has := metrics[th.Metric]
	switch {
	case !has:
		report.NeedsRetraining = true
		report.Reason = fmt.Sprintf("metric %s not recorded", th.Metric)
	case value < th.Min:
		report.NeedsRetraining = true
		report.Reason = fmt.Sprintf("%s %.3f below threshold %.3f", th.Metric, value, th.Min)
	default:
		report.Reason = "performance_acceptable"
	}
	return report, nil
}
