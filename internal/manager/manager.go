// Package manager owns the active model handles and the retrain
// orchestrator. The handle is the single shared mutable resource between
// the prediction path and retraining; it is replaced by an atomic pointer
// swap, never mutated in place, so readers always observe either the fully
// old or fully new model.
package manager

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"predictd/internal/domain"
	"predictd/internal/ml"
	"predictd/internal/monitor"
	"predictd/internal/predlog"
	"predictd/pkg/types"
)

// ModelHandle is the active fitted model plus its provenance. Immutable
// once published.
type ModelHandle struct {
	ModelType  string
	Algorithm  string
	Name       string
	Path       string
	TrainedAt  time.Time
	Metrics    map[string]float64
	Regressor  ml.Regressor
	Classifier ml.Classifier
}

// ModelConfig are per-model-type tunables.
type ModelConfig struct {
	// Algorithm used when (re)training.
	Algorithm string
	// Artifact load order at startup; defaults to [Algorithm].
	Fallback []string
	// Default training dataset path. Iris falls back to the built-in
	// sample when empty; housing requires a path.
	DataPath  string
	MaxDepth  int
	Trees     int
	TestRatio float64
	Seed      int64
}

// Config encapsulates all tunables for Manager construction.
type Config struct {
	ModelsDir string
	Models    map[string]ModelConfig
}

// Defaults applied when corresponding ModelConfig fields are unset.
var defaultModels = map[string]ModelConfig{
	domain.Housing: {Algorithm: ml.AlgorithmDecisionTree, MaxDepth: 8, TestRatio: 0.2, Seed: 7},
	domain.Iris:    {Algorithm: ml.AlgorithmRandomForest, MaxDepth: 5, Trees: 25, TestRatio: 0.2, Seed: 7},
}

type Manager struct {
	cfg       Config
	store     *predlog.Store
	recorders map[string]*predlog.Recorder
	monitor   *monitor.Monitor
	log       zerolog.Logger

	handles map[string]*atomic.Pointer[ModelHandle]
	running map[string]*atomic.Bool

	mu          sync.Mutex
	lastResults map[string]types.RetrainResult

	startTime time.Time
	// beforeFit runs just before a retrain's fit step; tests use it to
	// hold a job in the Running state.
	beforeFit func(modelType string)
}

// New constructs a Manager. Model handles are empty until Bootstrap or a
// retrain publishes them.
func New(cfg Config, store *predlog.Store, recorders map[string]*predlog.Recorder, mon *monitor.Monitor, log zerolog.Logger) *Manager {
	if cfg.Models == nil {
		cfg.Models = make(map[string]ModelConfig)
	}
	for _, name := range domain.Names() {
		mc := cfg.Models[name]
		def := defaultModels[name]
		if mc.Algorithm == "" {
			mc.Algorithm = def.Algorithm
		}
		if len(mc.Fallback) == 0 {
			mc.Fallback = []string{mc.Algorithm}
		}
		if mc.MaxDepth <= 0 {
			mc.MaxDepth = def.MaxDepth
		}
		if mc.Trees <= 0 {
			mc.Trees = def.Trees
		}
		if mc.TestRatio <= 0 || mc.TestRatio >= 1 {
			mc.TestRatio = def.TestRatio
		}
		if mc.Seed == 0 {
			mc.Seed = def.Seed
		}
		cfg.Models[name] = mc
	}
	m := &Manager{
		cfg:         cfg,
		store:       store,
		recorders:   recorders,
		monitor:     mon,
		log:         log,
		handles:     make(map[string]*atomic.Pointer[ModelHandle]),
		running:     make(map[string]*atomic.Bool),
		lastResults: make(map[string]types.RetrainResult),
		startTime:   time.Now(),
	}
	for _, name := range domain.Names() {
		m.handles[name] = &atomic.Pointer[ModelHandle]{}
		m.running[name] = &atomic.Bool{}
	}
	return m
}

func (m *Manager) modelConfig(modelType string) ModelConfig { return m.cfg.Models[modelType] }

func (m *Manager) artifactPath(modelType, algorithm string) string {
	return filepath.Join(m.cfg.ModelsDir, modelType+"_"+algorithm+".json")
}

// Handle returns the active handle for a model type, or nil when none has
// been published yet.
func (m *Manager) Handle(modelType string) *ModelHandle {
	slot, ok := m.handles[modelType]
	if !ok {
		return nil
	}
	return slot.Load()
}

func (m *Manager) publish(h *ModelHandle) {
	m.handles[h.ModelType].Store(h)
	lastTrainedTimestamp.WithLabelValues(h.ModelType).Set(float64(h.TrainedAt.Unix()))
}

// Bootstrap loads each model type's artifact, walking the configured
// fallback chain, and trains an initial model when no artifact loads.
func (m *Manager) Bootstrap(ctx context.Context) error {
	for _, modelType := range domain.Names() {
		if m.loadFromDisk(modelType) {
			continue
		}
		m.log.Info().Str("model", modelType).Msg("no loadable artifact, training initial model")
		result := m.retrainOne(ctx, modelType, true, "")
		if result.Status == "failed" {
			return fmt.Errorf("initial training for %s: %s", modelType, result.Error)
		}
	}
	return nil
}

func (m *Manager) loadFromDisk(modelType string) bool {
	mc := m.modelConfig(modelType)
	dom := domain.Lookup(modelType)
	for _, algorithm := range mc.Fallback {
		path := m.artifactPath(modelType, algorithm)
		artifact, err := ml.LoadArtifact(path)
		if err != nil {
			m.log.Debug().Str("model", modelType).Str("path", path).Err(err).Msg("artifact not loadable")
			continue
		}
		handle := &ModelHandle{
			ModelType: modelType,
			Algorithm: artifact.Algorithm,
			Name:      ml.DisplayName(artifact.Algorithm),
			Path:      path,
			TrainedAt: artifact.TrainedAt,
			Metrics:   artifact.Metrics,
		}
		if dom.Kind == domain.Regression {
			handle.Regressor, err = artifact.Regressor()
		} else {
			handle.Classifier, err = artifact.Classifier()
		}
		if err != nil {
			m.log.Warn().Str("model", modelType).Str("path", path).Err(err).Msg("artifact rejected")
			continue
		}
		m.publish(handle)
		m.log.Info().Str("model", modelType).Str("algorithm", artifact.Algorithm).Msg("model loaded")
		return true
	}
	return false
}

// Result is the outcome of one prediction.
type Result struct {
	Kind      domain.Kind
	Value     float64
	Class     int
	ClassName string
	ModelName string
}

// Predict validates raw fields against the model type's domain, maps them
// to the model's feature vector, and invokes the active handle. It never
// blocks on a running retrain. The accepted request is recorded through the
// prediction logger; a logging failure is logged and swallowed, never
// surfaced to the caller.
func (m *Manager) Predict(ctx context.Context, modelType string, raw map[string]float64) (Result, error) {
	dom := domain.Lookup(modelType)
	if dom == nil {
		return Result{}, unknownModelError{modelType: modelType}
	}
	req, err := dom.Validate(raw)
	if err != nil {
		validationErrorsTotal.WithLabelValues(modelType).Inc()
		return Result{}, err
	}

	handle := m.Handle(modelType)
	if handle == nil {
		modelErrorsTotal.WithLabelValues(modelType).Inc()
		return Result{}, errPrediction("no model loaded for " + modelType)
	}

	start := time.Now()
	features := req.Features()
	result := Result{Kind: dom.Kind, ModelName: handle.Name}
	var prediction string

	switch dom.Kind {
	case domain.Regression:
		value, perr := handle.Regressor.Predict(features)
		if perr != nil {
			modelErrorsTotal.WithLabelValues(modelType).Inc()
			return Result{}, errPrediction(perr.Error())
		}
		if value < dom.OutputLo || value > dom.OutputHi {
			m.log.Warn().Str("model", modelType).Float64("prediction", value).Msg("unusual prediction value")
		}
		result.Value = value
		predictionValue.WithLabelValues(modelType).Observe(value)
		prediction = strconv.FormatFloat(value, 'g', -1, 64)
	case domain.Classification:
		class, perr := handle.Classifier.Predict(features)
		if perr != nil {
			modelErrorsTotal.WithLabelValues(modelType).Inc()
			return Result{}, errPrediction(perr.Error())
		}
		if class < 0 || class >= len(dom.ClassNames) {
			modelErrorsTotal.WithLabelValues(modelType).Inc()
			return Result{}, errPrediction(fmt.Sprintf("model returned unexpected class value: %d", class))
		}
		result.Class = class
		result.ClassName = dom.ClassNames[class]
		prediction = strconv.Itoa(class)
	}

	if rec := m.recorders[modelType]; rec != nil {
		if lerr := rec.Record(req.Fields(), prediction); lerr != nil {
			m.log.Warn().Str("model", modelType).Err(lerr).Msg("prediction logging failed")
		}
	}
	predictionsTotal.WithLabelValues(modelType, handle.Name).Inc()
	predictionLatency.WithLabelValues(modelType).Observe(time.Since(start).Seconds())
	return result, nil
}

// Ready reports whether every model type has an active handle.
func (m *Manager) Ready() bool {
	for _, name := range domain.Names() {
		if m.Handle(name) == nil {
			return false
		}
	}
	return true
}

// ModelInfo describes the active model for a model type.
func (m *Manager) ModelInfo(modelType string) (types.ModelInfoResponse, error) {
	mc, ok := m.cfg.Models[modelType]
	if !ok {
		return types.ModelInfoResponse{}, unknownModelError{modelType: modelType}
	}
	info := types.ModelInfoResponse{
		ModelName: ml.DisplayName(mc.Algorithm),
		ModelType: modelType,
		ModelPath: m.artifactPath(modelType, mc.Algorithm),
	}
	if handle := m.Handle(modelType); handle != nil {
		info.ModelName = handle.Name
		info.ModelPath = handle.Path
		info.PerformanceMetrics = handle.Metrics
		if !handle.TrainedAt.IsZero() {
			info.LastTrained = handle.TrainedAt.UTC().Format(time.RFC3339)
		}
	}
	return info, nil
}

// Health summarizes liveness of the models and the prediction log store.
func (m *Manager) Health() types.HealthResponse {
	loaded := make(map[string]bool, len(m.handles))
	allLoaded := true
	for _, name := range domain.Names() {
		ok := m.Handle(name) != nil
		loaded[name] = ok
		allLoaded = allLoaded && ok
	}
	dbOK := m.store.Ping()
	status := "healthy"
	if !allLoaded || !dbOK {
		status = "degraded"
	}
	return types.HealthResponse{
		Status:            status,
		ModelLoaded:       loaded,
		DatabaseConnected: dbOK,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}
}

// AppMetrics reports prediction totals from the relational log. Reads
// reflect prior writes without locking out concurrent writers.
func (m *Manager) AppMetrics() (types.AppMetricsResponse, error) {
	resp := types.AppMetricsResponse{
		PredictionsByModel: make(map[string]int),
		LastUpdated:        time.Now().UTC().Format(time.RFC3339),
	}
	for _, name := range domain.Names() {
		n, err := m.store.Count(name)
		if err != nil {
			return types.AppMetricsResponse{}, err
		}
		resp.PredictionsByModel[name] = n
		resp.TotalPredictions += n
	}
	if avg, ok, err := m.store.Average(domain.Housing); err != nil {
		return types.AppMetricsResponse{}, err
	} else if ok {
		resp.AveragePrediction = &avg
	}
	return resp, nil
}
