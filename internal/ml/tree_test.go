package ml

import (
	"math"
	"testing"
)

func separableClasses() ([][]float64, []int) {
	var X [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		X = append(X, []float64{float64(i) * 0.1, 1})
		if i < 10 {
			y = append(y, 0)
		} else {
			y = append(y, 1)
		}
	}
	return X, y
}

func TestTreeClassifierSeparable(t *testing.T) {
	X, y := separableClasses()
	clf := &TreeClassifier{MaxDepth: 4}
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	for i := range X {
		got, err := clf.Predict(X[i])
		if err != nil {
			t.Fatalf("predict: %v", err)
		}
		if got != y[i] {
			t.Fatalf("sample %d: predicted %d, want %d", i, got, y[i])
		}
	}
}

func TestTreeClassifierUntrained(t *testing.T) {
	clf := &TreeClassifier{}
	if _, err := clf.Predict([]float64{1, 2}); err == nil {
		t.Fatalf("expected error from untrained model")
	}
}

func TestTreeClassifierFitErrors(t *testing.T) {
	clf := &TreeClassifier{}
	if err := clf.Fit(nil, nil); err == nil {
		t.Fatalf("expected error on empty training data")
	}
	if err := clf.Fit([][]float64{{1}}, []int{0, 1}); err == nil {
		t.Fatalf("expected error on size mismatch")
	}
}

func TestTreeRegressorStepFunction(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		v := float64(i) * 0.1
		X = append(X, []float64{v})
		if v <= 0.95 {
			y = append(y, 1)
		} else {
			y = append(y, 10)
		}
	}
	reg := &TreeRegressor{MaxDepth: 4}
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	low, err := reg.Predict([]float64{0.3})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	high, err := reg.Predict([]float64{1.8})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(low-1) > 0.5 || math.Abs(high-10) > 0.5 {
		t.Fatalf("low=%g high=%g, want ~1 and ~10", low, high)
	}
}

func TestTreeDefaultDepth(t *testing.T) {
	X, y := separableClasses()
	clf := &TreeClassifier{}
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if clf.MaxDepth != defaultMaxDepth {
		t.Fatalf("MaxDepth = %d, want default %d", clf.MaxDepth, defaultMaxDepth)
	}
}

func TestWalkRejectsShortFeatureVector(t *testing.T) {
	X, y := separableClasses()
	clf := &TreeClassifier{MaxDepth: 4}
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := clf.Predict([]float64{}); err == nil {
		t.Fatalf("expected error on empty feature vector")
	}
}
