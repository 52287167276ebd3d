package ml

import "math/rand"

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	var sum float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sum += d * d
	}
	return sum / float64(len(yTrue))
}

// R2 is the coefficient of determination. A constant target yields 0.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	m := mean(yTrue)
	var ssRes, ssTot float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		ssRes += d * d
		t := yTrue[i] - m
		ssTot += t * t
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Accuracy is the fraction of exact label matches.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// MacroF1 averages per-class F1 over all classes present in yTrue.
func MacroF1(yTrue, yPred []int) float64 {
	classes := make(map[int]bool)
	for _, c := range yTrue {
		classes[c] = true
	}
	if len(classes) == 0 {
		return 0
	}
	var total float64
	for c := range classes {
		var tp, fp, fn float64
		for i := range yTrue {
			switch {
			case yPred[i] == c && yTrue[i] == c:
				tp++
			case yPred[i] == c:
				fp++
			case yTrue[i] == c:
				fn++
			}
		}
		if tp > 0 {
			precision := tp / (tp + fp)
			recall := tp / (tp + fn)
			total += 2 * precision * recall / (precision + recall)
		}
	}
	return total / float64(len(classes))
}

// SplitRegression shuffles with the given seed and splits off testRatio of
// the data for evaluation.
func SplitRegression(X [][]float64, y []float64, testRatio float64, seed int64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	perm := rand.New(rand.NewSource(seed)).Perm(len(X))
	cut := len(X) - int(float64(len(X))*testRatio)
	for i, idx := range perm {
		if i < cut {
			trainX = append(trainX, X[idx])
			trainY = append(trainY, y[idx])
		} else {
			testX = append(testX, X[idx])
			testY = append(testY, y[idx])
		}
	}
	return trainX, trainY, testX, testY
}

// SplitClassification is SplitRegression for integer labels.
func SplitClassification(X [][]float64, y []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	perm := rand.New(rand.NewSource(seed)).Perm(len(X))
	cut := len(X) - int(float64(len(X))*testRatio)
	for i, idx := range perm {
		if i < cut {
			trainX = append(trainX, X[idx])
			trainY = append(trainY, y[idx])
		} else {
			testX = append(testX, X[idx])
			testY = append(testY, y[idx])
		}
	}
	return trainX, trainY, testX, testY
}

// EvaluateRegressor scores a fitted regressor on held-out data.
func EvaluateRegressor(m Regressor, X [][]float64, y []float64) (map[string]float64, error) {
	preds := make([]float64, len(X))
	for i := range X {
		p, err := m.Predict(X[i])
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return map[string]float64{
		"r2_score": R2(y, preds),
		"mse":      MSE(y, preds),
	}, nil
}

// EvaluateClassifier scores a fitted classifier on held-out data.
func EvaluateClassifier(m Classifier, X [][]float64, y []int) (map[string]float64, error) {
	preds := make([]int, len(X))
	for i := range X {
		p, err := m.Predict(X[i])
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return map[string]float64{
		"accuracy": Accuracy(y, preds),
		"f1_score": MacroF1(y, preds),
	}, nil
}
