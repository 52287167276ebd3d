package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

const housingHeader = "longitude,latitude,housing_median_age,total_rooms,total_bedrooms,population,households,median_income,median_house_value\n"

func TestLoadHousingCSV(t *testing.T) {
	p := writeCSV(t, "housing.csv", housingHeader+
		"-118.25,34.05,25,5000,1000,3000,1000,5.0,3.85\n"+
		"-122.23,37.88,41,880,129,322,126,8.3252,4.526\n")
	X, y, err := LoadHousingCSV(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(X) != 2 || len(y) != 2 {
		t.Fatalf("rows = %d/%d, want 2/2", len(X), len(y))
	}
	// Engineered features: income, age, rooms/hh, bedrooms/hh, pop, pop/hh, lat, lon.
	want := []float64{5.0, 25, 5, 1, 3000, 3, 34.05, -118.25}
	if !reflect.DeepEqual(X[0], want) {
		t.Fatalf("features = %v, want %v", X[0], want)
	}
	if y[0] != 3.85 {
		t.Fatalf("target = %g, want 3.85", y[0])
	}
}

func TestLoadHousingCSVSkipsDirtyRows(t *testing.T) {
	p := writeCSV(t, "housing.csv", housingHeader+
		"-118.25,34.05,25,5000,1000,3000,1000,5.0,3.85\n"+
		"-118.25,34.05,25,5000,not-a-number,3000,1000,5.0,3.85\n"+
		"-118.25,34.05,25,5000,1000,3000,1000,-1,3.85\n")
	X, _, err := LoadHousingCSV(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(X) != 1 {
		t.Fatalf("rows = %d, want 1 (dirty rows skipped)", len(X))
	}
}

func TestLoadHousingCSVErrors(t *testing.T) {
	if _, _, err := LoadHousingCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	p := writeCSV(t, "noheader.csv", "a,b,c\n1,2,3\n")
	if _, _, err := LoadHousingCSV(p); err == nil {
		t.Fatalf("expected error for missing columns")
	}
	empty := writeCSV(t, "allbad.csv", housingHeader+
		"-118.25,34.05,25,5000,1000,3000,1000,-1,3.85\n")
	if _, _, err := LoadHousingCSV(empty); err == nil {
		t.Fatalf("expected error when no row survives validation")
	}
}

func TestLoadIrisCSVNamedSpecies(t *testing.T) {
	p := writeCSV(t, "iris.csv", "sepal_length,sepal_width,petal_length,petal_width,species\n"+
		"5.1,3.5,1.4,0.2,setosa\n"+
		"6.4,3.2,4.5,1.5,Iris-versicolor\n"+
		"6.3,3.3,6.0,2.5,virginica\n")
	X, y, err := LoadIrisCSV(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(X) != 3 {
		t.Fatalf("rows = %d, want 3", len(X))
	}
	if !reflect.DeepEqual(y, []int{0, 1, 2}) {
		t.Fatalf("labels = %v, want [0 1 2]", y)
	}
}

func TestLoadIrisCSVNumericTarget(t *testing.T) {
	p := writeCSV(t, "iris.csv", "sepal_length,sepal_width,petal_length,petal_width,target\n"+
		"5.1,3.5,1.4,0.2,0\n"+
		"6.4,3.2,4.5,1.5,1\n"+
		"5.0,3.4,1.5,0.2,7\n")
	X, y, err := LoadIrisCSV(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// The out-of-range label row is skipped.
	if len(X) != 2 || !reflect.DeepEqual(y, []int{0, 1}) {
		t.Fatalf("rows = %d labels = %v", len(X), y)
	}
}

func TestLoadIrisCSVMissingLabelColumn(t *testing.T) {
	p := writeCSV(t, "iris.csv", "sepal_length,sepal_width,petal_length,petal_width\n"+
		"5.1,3.5,1.4,0.2\n")
	if _, _, err := LoadIrisCSV(p); err == nil {
		t.Fatalf("expected error for missing label column")
	}
}

func TestBuiltinIris(t *testing.T) {
	X, y := BuiltinIris()
	if len(X) != 150 || len(y) != 150 {
		t.Fatalf("samples = %d/%d, want 150", len(X), len(y))
	}
	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}
	for class := 0; class < 3; class++ {
		if counts[class] != 50 {
			t.Fatalf("class %d count = %d, want 50", class, counts[class])
		}
	}
	for i, x := range X {
		for f, v := range x {
			if v < irisFloor[f] {
				t.Fatalf("sample %d feature %d = %g below floor %g", i, f, v, irisFloor[f])
			}
		}
	}

	// Deterministic across calls.
	again, _ := BuiltinIris()
	if !reflect.DeepEqual(X, again) {
		t.Fatalf("builtin sample must be deterministic")
	}
}
