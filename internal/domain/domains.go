package domain

// Model type names used in routes, config, and storage.
const (
	Housing = "housing"
	Iris    = "iris"
)

// Housing bounds follow the California housing dataset: block-group level
// counts, income in tens of thousands of dollars, coordinates within the
// state.
var housingDomain = &Domain{
	Name: Housing,
	Kind: Regression,
	Bounds: []FieldBound{
		{Field: "total_rooms", Min: 0, Max: 50000, ExclusiveMin: true},
		{Field: "total_bedrooms", Min: 0, Max: 10000, ExclusiveMin: true},
		{Field: "population", Min: 1, Max: 50000},
		{Field: "households", Min: 1, Max: 10000},
		{Field: "median_income", Min: 0, Max: 20, ExclusiveMin: true},
		{Field: "housing_median_age", Min: 0, Max: 60},
		{Field: "latitude", Min: 32.0, Max: 42.5},
		{Field: "longitude", Min: -125.0, Max: -114.0},
	},
	PartWhole: []PartWholeRule{
		{Part: "total_bedrooms", Whole: "total_rooms", Message: "total bedrooms cannot exceed total rooms"},
		{Part: "households", Whole: "population", Message: "number of households cannot exceed population"},
	},
	RatioBands: []RatioBandRule{
		{Num: "population", Den: "households", Lo: 0.5, Hi: 20,
			Field: "households", Label: "average household size", SuggestDivisor: 3},
		{Num: "total_rooms", Den: "households", Lo: 0.5, Hi: 50,
			Field: "total_rooms", Label: "average rooms per household"},
		{Num: "total_bedrooms", Den: "households", Lo: 0, Hi: 10,
			Field: "total_bedrooms", Label: "average bedrooms per household"},
	},
	FeatureNames: []string{
		"MedInc", "HouseAge", "AveRooms", "AveBedrms",
		"Population", "AveOccup", "Latitude", "Longitude",
	},
	Features: func(f map[string]float64) []float64 {
		// Same feature engineering as the training pipeline.
		return []float64{
			f["median_income"],
			f["housing_median_age"],
			f["total_rooms"] / f["households"],
			f["total_bedrooms"] / f["households"],
			f["population"],
			f["population"] / f["households"],
			f["latitude"],
			f["longitude"],
		}
	},
	// Median house value in hundreds of thousands of dollars.
	OutputLo: 0, OutputHi: 10,
}

// Iris bounds are a generous biological range around the classic dataset
// measurements (cm).
var irisDomain = &Domain{
	Name: Iris,
	Kind: Classification,
	Bounds: []FieldBound{
		{Field: "sepal_length", Min: 3.0, Max: 10.0},
		{Field: "sepal_width", Min: 1.5, Max: 5.0},
		{Field: "petal_length", Min: 0.5, Max: 8.0},
		{Field: "petal_width", Min: 0.05, Max: 3.0},
	},
	PartWhole: []PartWholeRule{
		{Part: "petal_width", Whole: "petal_length", Message: "petal width cannot be greater than petal length"},
		{Part: "sepal_width", Whole: "sepal_length", Message: "sepal width cannot be greater than sepal length"},
	},
	RatioBands: []RatioBandRule{
		{Num: "petal_width", Den: "petal_length", Lo: 0.01, Hi: 1.0,
			Field: "petal_width", Label: "petal width/length ratio"},
		{Num: "sepal_width", Den: "sepal_length", Lo: 0.2, Hi: 1.0,
			Field: "sepal_width", Label: "sepal width/length ratio"},
	},
	Conditionals: []ConditionalRule{
		{IfField: "petal_length", IfBelow: 1.0, ThenField: "petal_width", ThenBelow: 0.5,
			Constraint: "very short petals (< 1.0 cm) typically have narrow width (< 0.5 cm)"},
	},
	FeatureNames: []string{
		"sepal length (cm)", "sepal width (cm)", "petal length (cm)", "petal width (cm)",
	},
	Features: func(f map[string]float64) []float64 {
		return []float64{f["sepal_length"], f["sepal_width"], f["petal_length"], f["petal_width"]}
	},
	ClassNames: []string{"setosa", "versicolor", "virginica"},
	OutputLo:   0, OutputHi: 2,
}

var domains = map[string]*Domain{
	Housing: housingDomain,
	Iris:    irisDomain,
}

// Lookup returns the domain for a model type name, or nil.
func Lookup(name string) *Domain { return domains[name] }

// Names lists the registered model types in a stable order.
func Names() []string { return []string{Housing, Iris} }
