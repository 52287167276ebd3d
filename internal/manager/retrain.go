package manager

import (
	"context"
	"fmt"
	"time"

	"predictd/internal/dataset"
	"predictd/internal/domain"
	"predictd/internal/ml"
	"predictd/pkg/types"
)

// Retrain result statuses.
const (
	statusRetrained = "retrained"
	statusSkipped   = "skipped"
	statusFailed    = "failed"
)

func resolveTargets(modelType string) ([]string, error) {
	switch modelType {
	case "":
		return domain.Names(), nil
	case domain.Housing, domain.Iris:
		return []string{modelType}, nil
	default:
		return nil, unknownModelError{modelType: modelType}
	}
}

// acquire claims the running flag for every target, releasing any claims
// already made if one is busy. A model type already Running rejects the
// whole request; jobs are never queued and never interrupt a running job.
func (m *Manager) acquire(targets []string) error {
	for i, t := range targets {
		if !m.running[t].CompareAndSwap(false, true) {
			for _, held := range targets[:i] {
				m.running[held].Store(false)
			}
			return retrainInProgressError{modelType: t}
		}
	}
	return nil
}

// Retrain runs the job synchronously: the caller blocks until every target
// reaches Completed or Failed. Mutual exclusion and atomic publish are
// identical to the background mode.
func (m *Manager) Retrain(ctx context.Context, req types.RetrainRequest) (types.RetrainResponse, error) {
	targets, err := resolveTargets(req.ModelType)
	if err != nil {
		return types.RetrainResponse{}, err
	}
	if err := m.acquire(targets); err != nil {
		return types.RetrainResponse{}, err
	}
	results := m.runBatch(ctx, targets, req.Force, req.NewDataPath)
	return types.RetrainResponse{
		Status:  overallStatus(results),
		Message: fmt.Sprintf("model retraining completed for %s", describeTargets(req.ModelType)),
		Results: results,
	}, nil
}

// Submit starts the job in the background and returns immediately with a
// task id. The running flags are claimed before returning, so a
// conflicting request observes 409 without racing the goroutine startup.
func (m *Manager) Submit(req types.RetrainRequest) (types.RetrainResponse, error) {
	targets, err := resolveTargets(req.ModelType)
	if err != nil {
		return types.RetrainResponse{}, err
	}
	if err := m.acquire(targets); err != nil {
		return types.RetrainResponse{}, err
	}
	taskID := fmt.Sprintf("retrain_%s_%s", describeTargets(req.ModelType), time.Now().UTC().Format("20060102_150405"))
	go func() {
		results := m.runBatch(context.Background(), targets, req.Force, req.NewDataPath)
		m.log.Info().Str("task_id", taskID).Interface("results", results).Msg("background retraining finished")
	}()
	return types.RetrainResponse{
		Status:  "started",
		Message: fmt.Sprintf("model retraining started in background for %s", describeTargets(req.ModelType)),
		TaskID:  taskID,
	}, nil
}

// runBatch retrains each target in turn. Failures are isolated per model
// type: one target's failure never blocks the others. The caller must
// already hold every target's running flag; runBatch releases each flag as
// that target finishes.
func (m *Manager) runBatch(ctx context.Context, targets []string, force bool, dataPath string) map[string]types.RetrainResult {
	results := make(map[string]types.RetrainResult, len(targets))
	for _, modelType := range targets {
		result := m.retrainOne(ctx, modelType, force, dataPath)
		m.mu.Lock()
		m.lastResults[modelType] = result
		m.mu.Unlock()
		m.running[modelType].Store(false)
		results[modelType] = result
	}
	return results
}

// retrainOne executes one model type's job: gate on the performance
// monitor unless forced, load the dataset, fit a fresh model, evaluate it,
// persist the artifact, and only then publish the new handle. Any failure
// leaves the previously active handle untouched.
func (m *Manager) retrainOne(ctx context.Context, modelType string, force bool, dataPath string) (result types.RetrainResult) {
	start := time.Now()
	result.StartTime = start.UTC().Format(time.RFC3339)
	defer func() {
		result.EndTime = time.Now().UTC().Format(time.RFC3339)
		retrainTotal.WithLabelValues(modelType, result.Status).Inc()
		retrainDuration.WithLabelValues(modelType).Observe(time.Since(start).Seconds())
	}()

	fail := func(err error) types.RetrainResult {
		m.log.Error().Str("model", modelType).Err(err).Msg("retraining failed")
		result.Status = statusFailed
		result.Error = err.Error()
		return result
	}

	if !force {
		report, err := m.monitor.Evaluate(modelType)
		if err != nil {
			return fail(err)
		}
		if !report.NeedsRetraining {
			m.log.Info().Str("model", modelType).Msg("retraining skipped, performance acceptable")
			result.Status = statusSkipped
			result.Reason = "performance_acceptable"
			result.Metrics = report.Metrics
			return result
		}
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if m.beforeFit != nil {
		m.beforeFit(modelType)
	}

	mc := m.modelConfig(modelType)
	if dataPath == "" {
		dataPath = mc.DataPath
	}
	dom := domain.Lookup(modelType)
	opt := ml.Options{MaxDepth: mc.MaxDepth, Trees: mc.Trees, Seed: mc.Seed}
	path := m.artifactPath(modelType, mc.Algorithm)

	handle := &ModelHandle{
		ModelType: modelType,
		Algorithm: mc.Algorithm,
		Name:      ml.DisplayName(mc.Algorithm),
		Path:      path,
	}
	var (
		model      any
		dataPoints int
		metrics    map[string]float64
	)

	if dom.Kind == domain.Regression {
		if dataPath == "" {
			return fail(fmt.Errorf("no dataset configured for %s", modelType))
		}
		X, y, err := dataset.LoadHousingCSV(dataPath)
		if err != nil {
			return fail(err)
		}
		trainX, trainY, testX, testY := ml.SplitRegression(X, y, mc.TestRatio, mc.Seed)
		reg, err := ml.NewRegressor(mc.Algorithm, opt)
		if err != nil {
			return fail(err)
		}
		if err := reg.Fit(trainX, trainY); err != nil {
			return fail(err)
		}
		if len(testX) == 0 {
			testX, testY = trainX, trainY
		}
		metrics, err = ml.EvaluateRegressor(reg, testX, testY)
		if err != nil {
			return fail(err)
		}
		handle.Regressor = reg
		model = reg
		dataPoints = len(trainX)
	} else {
		var (
			X   [][]float64
			y   []int
			err error
		)
		if dataPath == "" {
			X, y = dataset.BuiltinIris()
		} else if X, y, err = dataset.LoadIrisCSV(dataPath); err != nil {
			return fail(err)
		}
		trainX, trainY, testX, testY := ml.SplitClassification(X, y, mc.TestRatio, mc.Seed)
		clf, err := ml.NewClassifier(mc.Algorithm, opt)
		if err != nil {
			return fail(err)
		}
		if err := clf.Fit(trainX, trainY); err != nil {
			return fail(err)
		}
		if len(testX) == 0 {
			testX, testY = trainX, trainY
		}
		metrics, err = ml.EvaluateClassifier(clf, testX, testY)
		if err != nil {
			return fail(err)
		}
		handle.Classifier = clf
		model = clf
		dataPoints = len(trainX)
	}

	artifact, err := ml.NewArtifact(mc.Algorithm, modelType, model)
	if err != nil {
		return fail(err)
	}
	artifact.Metrics = metrics
	artifact.DataPoints = dataPoints
	if err := ml.SaveArtifact(path, artifact); err != nil {
		return fail(err)
	}
	if err := m.store.InsertTrainingMetrics(modelType, handle.Name, metrics, artifact.TrainedAt, dataPoints); err != nil {
		return fail(err)
	}

	handle.TrainedAt = artifact.TrainedAt
	handle.Metrics = metrics
	m.publish(handle)

	m.log.Info().
		Str("model", modelType).
		Str("algorithm", mc.Algorithm).
		Int("data_points", dataPoints).
		Interface("metrics", metrics).
		Msg("retraining completed")

	result.Status = statusRetrained
	result.Metrics = metrics
	result.DataPoints = dataPoints
	return result
}

// Status reports the orchestrator's per-model-type state and last results.
func (m *Manager) Status() types.RetrainStatusResponse {
	resp := types.RetrainStatusResponse{
		States:      make(map[string]string),
		LastResults: make(map[string]types.RetrainResult),
	}
	for _, name := range domain.Names() {
		state := "idle"
		if m.running[name].Load() {
			state = "running"
		}
		resp.States[name] = state
	}
	m.mu.Lock()
	for k, v := range m.lastResults {
		resp.LastResults[k] = v
	}
	m.mu.Unlock()
	return resp
}

func overallStatus(results map[string]types.RetrainResult) string {
	allSkipped, allFailed := true, true
	for _, r := range results {
		if r.Status != statusSkipped {
			allSkipped = false
		}
		if r.Status != statusFailed {
			allFailed = false
		}
	}
	switch {
	case allSkipped:
		return "skipped"
	case allFailed:
		return "failed"
	default:
		return "completed"
	}
}

func describeTargets(modelType string) string {
	if modelType == "" {
		return "all"
	}
	return modelType
}
