package ml

import (
	"errors"
	"math"
	"sort"
)

const defaultMaxDepth = 6

// treeNode is one node of a CART tree flattened into a slice. Children are
// slice indices; -1 marks a leaf. Value holds the majority class label for
// classification trees and the mean target for regression trees.
type treeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	Left       int     `json:"left"`
	Right      int     `json:"right"`
	Value      float64 `json:"value"`
	Leaf       bool    `json:"leaf"`
}

func walk(nodes []treeNode, x []float64) (float64, error) {
	if len(nodes) == 0 {
		return 0, errors.New("model not trained")
	}
	idx := 0
	for {
		n := nodes[idx]
		if n.Leaf {
			return n.Value, nil
		}
		if n.FeatureIdx < 0 || n.FeatureIdx >= len(x) {
			return 0, errors.New("feature index out of range")
		}
		if x[n.FeatureIdx] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
		if idx < 0 || idx >= len(nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

// impurityFunc scores a candidate split's children; lower is better.
// leafValue reduces a node's targets to its prediction.
type impurityFunc func(left, right []float64) float64
type leafValueFunc func(targets []float64) float64

func buildTree(X [][]float64, y []float64, depth, maxDepth int, impurity impurityFunc, leafValue leafValueFunc) []treeNode {
	leaf := func() []treeNode {
		return []treeNode{{FeatureIdx: -1, Left: -1, Right: -1, Value: leafValue(y), Leaf: true}}
	}
	if depth >= maxDepth || len(y) < 2 || allEqual(y) {
		return leaf()
	}
	feature, threshold, ok := bestSplit(X, y, impurity)
	if !ok {
		return leaf()
	}
	lx, ly, rx, ry := partition(X, y, feature, threshold)
	if len(ly) == 0 || len(ry) == 0 {
		return leaf()
	}
	left := buildTree(lx, ly, depth+1, maxDepth, impurity, leafValue)
	right := buildTree(rx, ry, depth+1, maxDepth, impurity, leafValue)

	nodes := make([]treeNode, 0, 1+len(left)+len(right))
	nodes = append(nodes, treeNode{
		FeatureIdx: feature,
		Threshold:  threshold,
		Left:       1,
		Right:      1 + len(left),
		Value:      leafValue(y),
	})
	nodes = append(nodes, left...)
	nodes = append(nodes, right...)
	return nodes
}

// bestSplit tries the quartiles of each feature as thresholds and keeps the
// lowest-impurity split.
func bestSplit(X [][]float64, y []float64, impurity impurityFunc) (int, float64, bool) {
	featureCount := len(X[0])
	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.MaxFloat64

	values := make([]float64, len(X))
	for f := 0; f < featureCount; f++ {
		for i := range X {
			values[i] = X[i][f]
		}
		for _, threshold := range quartiles(values) {
			var left, right []float64
			for i := range X {
				if X[i][f] <= threshold {
					left = append(left, y[i])
				} else {
					right = append(right, y[i])
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			if score := impurity(left, right); score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func partition(X [][]float64, y []float64, feature int, threshold float64) (lx [][]float64, ly []float64, rx [][]float64, ry []float64) {
	for i := range X {
		if X[i][feature] <= threshold {
			lx = append(lx, X[i])
			ly = append(ly, y[i])
		} else {
			rx = append(rx, X[i])
			ry = append(ry, y[i])
		}
	}
	return lx, ly, rx, ry
}

func quartiles(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return nil
	}
	qs := []float64{sorted[n/4], sorted[n/2], sorted[(3*n)/4]}
	out := qs[:0]
	for i, q := range qs {
		if i == 0 || q != out[len(out)-1] {
			out = append(out, q)
		}
	}
	return out
}

func allEqual(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}

func giniImpurity(labels []float64) float64 {
	if len(labels) == 0 {
		return 0
	}
	counts := make(map[float64]int)
	for _, l := range labels {
		counts[l]++
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(len(labels))
		impurity -= p * p
	}
	return impurity
}

func weightedGini(left, right []float64) float64 {
	lw := float64(len(left))
	rw := float64(len(right))
	total := lw + rw
	return (lw/total)*giniImpurity(left) + (rw/total)*giniImpurity(right)
}

func variance(targets []float64) float64 {
	if len(targets) == 0 {
		return 0
	}
	m := mean(targets)
	var sum float64
	for _, v := range targets {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(targets))
}

func weightedVariance(left, right []float64) float64 {
	lw := float64(len(left))
	rw := float64(len(right))
	total := lw + rw
	return (lw/total)*variance(left) + (rw/total)*variance(right)
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func majority(labels []float64) float64 {
	counts := make(map[float64]int)
	best := 0.0
	bestCount := -1
	for _, l := range labels {
		counts[l]++
		if counts[l] > bestCount {
			bestCount = counts[l]
			best = l
		}
	}
	return best
}

// TreeClassifier is a CART classifier with gini splits.
type TreeClassifier struct {
	MaxDepth int        `json:"max_depth"`
	Nodes    []treeNode `json:"nodes"`
}

func (t *TreeClassifier) Fit(X [][]float64, y []int) error {
	if err := checkTraining(len(X), len(y)); err != nil {
		return err
	}
	if t.MaxDepth <= 0 {
		t.MaxDepth = defaultMaxDepth
	}
	targets := make([]float64, len(y))
	for i, l := range y {
		targets[i] = float64(l)
	}
	t.Nodes = buildTree(X, targets, 0, t.MaxDepth, weightedGini, majority)
	return nil
}

func (t *TreeClassifier) Predict(x []float64) (int, error) {
	v, err := walk(t.Nodes, x)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// TreeRegressor is a CART regressor with variance splits and mean leaves.
type TreeRegressor struct {
	MaxDepth int        `json:"max_depth"`
	Nodes    []treeNode `json:"nodes"`
}

func (t *TreeRegressor) Fit(X [][]float64, y []float64) error {
	if err := checkTraining(len(X), len(y)); err != nil {
		return err
	}
	if t.MaxDepth <= 0 {
		t.MaxDepth = defaultMaxDepth
	}
	t.Nodes = buildTree(X, y, 0, t.MaxDepth, weightedVariance, mean)
	return nil
}

func (t *TreeRegressor) Predict(x []float64) (float64, error) {
	return walk(t.Nodes, x)
}

func checkTraining(nx, ny int) error {
	if nx == 0 || ny == 0 {
		return errors.New("features or labels empty")
	}
	if nx != ny {
		return errors.New("features and labels size mismatch")
	}
	return nil
}
