package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"predictd/internal/domain"
	"predictd/internal/monitor"
	"predictd/internal/predlog"
	"predictd/pkg/types"
)

func retrainReq(modelType string, force bool) types.RetrainRequest {
	return types.RetrainRequest{ModelType: modelType, Force: force}
}

// writeHousingCSV generates a clean synthetic export whose target is a
// deterministic function of income, so a tree fits it exactly.
func writeHousingCSV(t *testing.T, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("longitude,latitude,housing_median_age,total_rooms,total_bedrooms,population,households,median_income,median_house_value\n")
	for i := 0; i < rows; i++ {
		income := float64(i%10) + 1
		fmt.Fprintf(&b, "-118.25,34.05,%d,5000,1000,3000,1000,%g,%g\n", 20+i%30, income, 0.5*income)
	}
	p := filepath.Join(t.TempDir(), "housing.csv")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store, err := predlog.Open(filepath.Join(t.TempDir(), "predictions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	recorders := make(map[string]*predlog.Recorder)
	logsDir := t.TempDir()
	for _, name := range domain.Names() {
		rec, rerr := predlog.NewRecorder(store, name, logsDir)
		if rerr != nil {
			t.Fatalf("new recorder: %v", rerr)
		}
		t.Cleanup(func() { rec.Close() })
		recorders[name] = rec
	}

	cfg := Config{
		ModelsDir: t.TempDir(),
		Models: map[string]ModelConfig{
			domain.Housing: {DataPath: writeHousingCSV(t, 60)},
		},
	}
	return New(cfg, store, recorders, monitor.New(store), zerolog.Nop())
}

func bootstrapped(t *testing.T) *Manager {
	t.Helper()
	m := newTestManager(t)
	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return m
}

func validHousing() map[string]float64 {
	return map[string]float64{
		"total_rooms":        5000,
		"total_bedrooms":     1000,
		"population":         3000,
		"households":         1000,
		"median_income":      5.0,
		"housing_median_age": 25,
		"latitude":           34.05,
		"longitude":          -118.25,
	}
}

func validIris() map[string]float64 {
	return map[string]float64{
		"sepal_length": 5.1,
		"sepal_width":  3.5,
		"petal_length": 1.4,
		"petal_width":  0.2,
	}
}

func TestBootstrapTrainsInitialModels(t *testing.T) {
	m := bootstrapped(t)
	if !m.Ready() {
		t.Fatalf("manager not ready after bootstrap")
	}
	for _, name := range domain.Names() {
		handle := m.Handle(name)
		if handle == nil {
			t.Fatalf("no handle for %s", name)
		}
		if _, err := os.Stat(handle.Path); err != nil {
			t.Fatalf("artifact missing for %s: %v", name, err)
		}
		if len(handle.Metrics) == 0 {
			t.Fatalf("no metrics recorded for %s", name)
		}
	}
}

func TestBootstrapLoadsExistingArtifacts(t *testing.T) {
	m := bootstrapped(t)

	// A second manager over the same dirs must load, not retrain.
	trained := false
	m2 := New(m.cfg, m.store, m.recorders, m.monitor, zerolog.Nop())
	m2.beforeFit = func(string) { trained = true }
	if err := m2.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if trained {
		t.Fatalf("second bootstrap should load artifacts from disk")
	}
	if !m2.Ready() {
		t.Fatalf("manager not ready after loading artifacts")
	}
}

func TestPredictHousing(t *testing.T) {
	m := bootstrapped(t)
	result, err := m.Predict(context.Background(), domain.Housing, validHousing())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if result.Kind != domain.Regression {
		t.Fatalf("kind = %v", result.Kind)
	}
	n, err := m.store.Count(domain.Housing)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("recorded predictions = %d, want 1", n)
	}
}

func TestPredictIris(t *testing.T) {
	m := bootstrapped(t)
	result, err := m.Predict(context.Background(), domain.Iris, validIris())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if result.Kind != domain.Classification {
		t.Fatalf("kind = %v", result.Kind)
	}
	if result.Class < 0 || result.Class > 2 {
		t.Fatalf("class = %d", result.Class)
	}
	names := domain.Lookup(domain.Iris).ClassNames
	if result.ClassName != names[result.Class] {
		t.Fatalf("class name %q does not match class %d", result.ClassName, result.Class)
	}
}

func TestPredictValidationError(t *testing.T) {
	m := bootstrapped(t)
	fields := validHousing()
	fields["median_income"] = -1
	_, err := m.Predict(context.Background(), domain.Housing, fields)
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	n, _ := m.store.Count(domain.Housing)
	if n != 0 {
		t.Fatalf("rejected request must not be recorded")
	}
}

func TestPredictUnknownModel(t *testing.T) {
	m := bootstrapped(t)
	_, err := m.Predict(context.Background(), "nope", validHousing())
	if !IsUnknownModel(err) {
		t.Fatalf("expected unknown model error, got %v", err)
	}
}

func TestPredictNoModelLoaded(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Predict(context.Background(), domain.Housing, validHousing())
	if !IsPredictionError(err) {
		t.Fatalf("expected prediction error before bootstrap, got %v", err)
	}
}

func TestRetrainSkipWhenAcceptable(t *testing.T) {
	m := bootstrapped(t)
	handle := m.Handle(domain.Housing)
	before, err := os.ReadFile(handle.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	resp, err := m.Retrain(context.Background(), retrainReq(domain.Housing, false))
	if err != nil {
		t.Fatalf("retrain: %v", err)
	}
	if resp.Status != "skipped" {
		t.Fatalf("status = %q, want skipped: %+v", resp.Status, resp)
	}
	result := resp.Results[domain.Housing]
	if result.Status != "skipped" || result.Reason != "performance_acceptable" {
		t.Fatalf("result = %+v", result)
	}

	after, err := os.ReadFile(handle.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("skip must leave the artifact untouched")
	}
	if m.Handle(domain.Housing) != handle {
		t.Fatalf("skip must leave the active handle untouched")
	}
}

func TestRetrainForcePublishesNewHandle(t *testing.T) {
	m := bootstrapped(t)
	old := m.Handle(domain.Housing)
	resp, err := m.Retrain(context.Background(), retrainReq(domain.Housing, true))
	if err != nil {
		t.Fatalf("retrain: %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("status = %q: %+v", resp.Status, resp)
	}
	result := resp.Results[domain.Housing]
	if result.Status != "retrained" || result.DataPoints == 0 {
		t.Fatalf("result = %+v", result)
	}
	if m.Handle(domain.Housing) == old {
		t.Fatalf("forced retrain must publish a fresh handle")
	}
}

func TestRetrainUnknownModelType(t *testing.T) {
	m := bootstrapped(t)
	if _, err := m.Retrain(context.Background(), retrainReq("nope", true)); !IsUnknownModel(err) {
		t.Fatalf("expected unknown model error")
	}
}

func TestRetrainMutualExclusion(t *testing.T) {
	m := bootstrapped(t)
	entered := make(chan string, 2)
	release := make(chan struct{})
	m.beforeFit = func(modelType string) {
		entered <- modelType
		<-release
	}

	resp, err := m.Submit(retrainReq(domain.Housing, true))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Status != "started" || resp.TaskID == "" {
		t.Fatalf("response = %+v", resp)
	}
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("background job never started")
	}

	// A second request for the same model type is rejected, never queued.
	if _, err := m.Retrain(context.Background(), retrainReq(domain.Housing, true)); !IsRetrainInProgress(err) {
		t.Fatalf("expected retrain-in-progress, got %v", err)
	}
	// A request for "both" conflicts with the running housing job.
	if _, err := m.Retrain(context.Background(), retrainReq("", true)); !IsRetrainInProgress(err) {
		t.Fatalf("expected retrain-in-progress for all-targets request, got %v", err)
	}

	status := m.Status()
	if status.States[domain.Housing] != "running" {
		t.Fatalf("states = %v", status.States)
	}

	close(release)
	deadline := time.Now().Add(10 * time.Second)
	for m.Status().States[domain.Housing] != "idle" {
		if time.Now().After(deadline) {
			t.Fatalf("job never finished")
		}
		time.Sleep(10 * time.Millisecond)
	}
	last := m.Status().LastResults[domain.Housing]
	if last.Status != "retrained" {
		t.Fatalf("last result = %+v", last)
	}
}

func TestRetrainFailureIsolated(t *testing.T) {
	m := bootstrapped(t)
	old := m.Handle(domain.Housing)

	// Break the housing dataset path; iris still trains from the builtin sample.
	mc := m.cfg.Models[domain.Housing]
	mc.DataPath = filepath.Join(t.TempDir(), "missing.csv")
	m.cfg.Models[domain.Housing] = mc

	resp, err := m.Retrain(context.Background(), retrainReq("", true))
	if err != nil {
		t.Fatalf("retrain: %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("status = %q: one failure must not fail the batch", resp.Status)
	}
	if resp.Results[domain.Housing].Status != "failed" {
		t.Fatalf("housing result = %+v", resp.Results[domain.Housing])
	}
	if resp.Results[domain.Iris].Status != "retrained" {
		t.Fatalf("iris result = %+v", resp.Results[domain.Iris])
	}
	if m.Handle(domain.Housing) != old {
		t.Fatalf("failed retrain must leave the old handle active")
	}
	// The old model still serves predictions.
	if _, err := m.Predict(context.Background(), domain.Housing, validHousing()); err != nil {
		t.Fatalf("predict after failed retrain: %v", err)
	}
}

func TestConcurrentPredictDuringRetrain(t *testing.T) {
	m := bootstrapped(t)
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	m.beforeFit = func(string) {
		entered <- struct{}{}
		<-release
	}
	if _, err := m.Submit(retrainReq(domain.Housing, true)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-entered

	// Predictions keep flowing against the old handle while the job runs.
	for i := 0; i < 5; i++ {
		if _, err := m.Predict(context.Background(), domain.Housing, validHousing()); err != nil {
			t.Fatalf("predict during retrain: %v", err)
		}
	}
	close(release)
	deadline := time.Now().Add(10 * time.Second)
	for m.Status().States[domain.Housing] != "idle" {
		if time.Now().After(deadline) {
			t.Fatalf("job never finished")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestModelInfo(t *testing.T) {
	m := bootstrapped(t)
	info, err := m.ModelInfo(domain.Housing)
	if err != nil {
		t.Fatalf("model info: %v", err)
	}
	if info.ModelType != domain.Housing || info.ModelName == "" || info.LastTrained == "" {
		t.Fatalf("info = %+v", info)
	}
	if _, err := m.ModelInfo("nope"); !IsUnknownModel(err) {
		t.Fatalf("expected unknown model error")
	}
}

func TestHealthAndAppMetrics(t *testing.T) {
	m := bootstrapped(t)
	health := m.Health()
	if health.Status != "healthy" || !health.DatabaseConnected {
		t.Fatalf("health = %+v", health)
	}
	for _, name := range domain.Names() {
		if !health.ModelLoaded[name] {
			t.Fatalf("model %s not loaded in %+v", name, health)
		}
	}

	if _, err := m.Predict(context.Background(), domain.Housing, validHousing()); err != nil {
		t.Fatalf("predict: %v", err)
	}
	metrics, err := m.AppMetrics()
	if err != nil {
		t.Fatalf("app metrics: %v", err)
	}
	if metrics.TotalPredictions != 1 || metrics.PredictionsByModel[domain.Housing] != 1 {
		t.Fatalf("metrics = %+v", metrics)
	}
	if metrics.AveragePrediction == nil {
		t.Fatalf("average prediction missing after a housing prediction")
	}
}

func TestHealthDegradedBeforeBootstrap(t *testing.T) {
	m := newTestManager(t)
	if got := m.Health().Status; got != "degraded" {
		t.Fatalf("status = %q, want degraded", got)
	}
}
