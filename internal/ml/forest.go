package ml

import (
	"errors"
	"math/rand"
)

const defaultNumTrees = 25

// ForestClassifier bags TreeClassifiers over bootstrap samples and predicts
// by majority vote.
type ForestClassifier struct {
	MaxDepth int               `json:"max_depth"`
	NumTrees int               `json:"num_trees"`
	Seed     int64             `json:"seed"`
	Trees    []*TreeClassifier `json:"trees"`
}

func (f *ForestClassifier) Fit(X [][]float64, y []int) error {
	if err := checkTraining(len(X), len(y)); err != nil {
		return err
	}
	if f.NumTrees <= 0 {
		f.NumTrees = defaultNumTrees
	}
	if f.MaxDepth <= 0 {
		f.MaxDepth = defaultMaxDepth
	}
	f.Trees = make([]*TreeClassifier, 0, f.NumTrees)
	for i := 0; i < f.NumTrees; i++ {
		rnd := rand.New(rand.NewSource(f.Seed + int64(i)))
		bx, by := bootstrap(rnd, X, y)
		tree := &TreeClassifier{MaxDepth: f.MaxDepth}
		if err := tree.Fit(bx, by); err != nil {
			return err
		}
		f.Trees = append(f.Trees, tree)
	}
	return nil
}

func (f *ForestClassifier) Predict(x []float64) (int, error) {
	if len(f.Trees) == 0 {
		return 0, errors.New("model not trained")
	}
	votes := make(map[int]int)
	best := 0
	bestCount := -1
	for _, tree := range f.Trees {
		label, err := tree.Predict(x)
		if err != nil {
			return 0, err
		}
		votes[label]++
		if votes[label] > bestCount {
			bestCount = votes[label]
			best = label
		}
	}
	return best, nil
}

func bootstrap(rnd *rand.Rand, X [][]float64, y []int) ([][]float64, []int) {
	n := len(X)
	bx := make([][]float64, n)
	by := make([]int, n)
	for i := 0; i < n; i++ {
		j := rnd.Intn(n)
		bx[i] = X[j]
		by[i] = y[j]
	}
	return bx, by
}
