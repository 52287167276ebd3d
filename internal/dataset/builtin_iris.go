package dataset

import "math/rand"

// Per-class measurement statistics of the classic iris dataset
// (sepal length, sepal width, petal length, petal width; cm).
var irisClassStats = []struct {
	mean [4]float64
	std  [4]float64
}{
	{mean: [4]float64{5.01, 3.43, 1.46, 0.25}, std: [4]float64{0.35, 0.38, 0.17, 0.11}},
	{mean: [4]float64{5.94, 2.77, 4.26, 1.33}, std: [4]float64{0.52, 0.31, 0.47, 0.20}},
	{mean: [4]float64{6.59, 2.97, 5.55, 2.03}, std: [4]float64{0.64, 0.32, 0.55, 0.27}},
}

// Measurement floors keep sampled values inside the validation bounds.
var irisFloor = [4]float64{3.0, 1.5, 0.5, 0.05}

// BuiltinIris returns a deterministic sample drawn around the published
// per-class statistics: 50 flowers per class, seeded so every process sees
// the same data. Used when no iris data path is configured.
func BuiltinIris() (X [][]float64, y []int) {
	rnd := rand.New(rand.NewSource(42))
	for class, stats := range irisClassStats {
		for i := 0; i < 50; i++ {
			x := make([]float64, 4)
			for f := 0; f < 4; f++ {
				v := stats.mean[f] + rnd.NormFloat64()*stats.std[f]
				if v < irisFloor[f] {
					v = irisFloor[f]
				}
				x[f] = v
			}
			X = append(X, x)
			y = append(y, class)
		}
	}
	return X, y
}
