// Package dataset loads training data for both model types. Housing data
// comes from a CSV export of the California housing dataset; iris data comes
// from a CSV or, when no path is configured, from a built-in sample.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"predictd/internal/domain"
)

// Raw housing columns expected in the CSV header, in any order. The target
// column is the median house value in hundreds of thousands of dollars.
var housingColumns = []string{
	"total_rooms", "total_bedrooms", "population", "households",
	"median_income", "housing_median_age", "latitude", "longitude",
}

const housingTarget = "median_house_value"

// LoadHousingCSV reads raw block-group rows and applies the same feature
// engineering the prediction path uses. Rows failing domain validation are
// skipped rather than failing the whole load; dirty rows exist in every
// real export.
func LoadHousingCSV(path string) (X [][]float64, y []float64, err error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}
	idx, err := columnIndex(header, append(append([]string{}, housingColumns...), housingTarget))
	if err != nil {
		return nil, nil, err
	}
	dom := domain.Lookup(domain.Housing)
	for _, row := range rows {
		fields := make(map[string]float64, len(housingColumns))
		ok := true
		for _, col := range housingColumns {
			v, perr := strconv.ParseFloat(strings.TrimSpace(row[idx[col]]), 64)
			if perr != nil {
				ok = false
				break
			}
			fields[col] = v
		}
		if !ok {
			continue
		}
		target, perr := strconv.ParseFloat(strings.TrimSpace(row[idx[housingTarget]]), 64)
		if perr != nil {
			continue
		}
		req, verr := dom.Validate(fields)
		if verr != nil {
			continue
		}
		X = append(X, req.Features())
		y = append(y, target)
	}
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("no usable rows in %s", path)
	}
	return X, y, nil
}

var irisColumns = []string{"sepal_length", "sepal_width", "petal_length", "petal_width"}

var irisLabels = map[string]int{
	"setosa": 0, "iris-setosa": 0,
	"versicolor": 1, "iris-versicolor": 1,
	"virginica": 2, "iris-virginica": 2,
}

// LoadIrisCSV reads measurement rows with either a numeric target column
// (0..2) or a species name column.
func LoadIrisCSV(path string) (X [][]float64, y []int, err error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}
	idx, err := columnIndex(header, irisColumns)
	if err != nil {
		return nil, nil, err
	}
	labelCol := -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "target", "species", "class":
			labelCol = i
		}
	}
	if labelCol == -1 {
		return nil, nil, fmt.Errorf("%s: no target/species column", path)
	}
	for _, row := range rows {
		x := make([]float64, len(irisColumns))
		ok := true
		for i, col := range irisColumns {
			v, perr := strconv.ParseFloat(strings.TrimSpace(row[idx[col]]), 64)
			if perr != nil {
				ok = false
				break
			}
			x[i] = v
		}
		if !ok {
			continue
		}
		raw := strings.ToLower(strings.TrimSpace(row[labelCol]))
		label, known := irisLabels[raw]
		if !known {
			n, perr := strconv.Atoi(raw)
			if perr != nil || n < 0 || n > 2 {
				continue
			}
			label = n
		}
		X = append(X, x)
		y = append(y, label)
	}
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("no usable rows in %s", path)
	}
	return X, y, nil
}

func readCSV(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) < 2 {
		return nil, nil, fmt.Errorf("%s: header plus at least one row required", path)
	}
	return all[0], all[1:], nil
}

func columnIndex(header, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return idx, nil
}
