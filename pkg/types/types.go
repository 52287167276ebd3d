package types

// HousingResponse is returned by POST /housing/predict.
type HousingResponse struct {
	// Predicted median house value in hundreds of thousands of dollars.
	// example: 3.85
	PredictedPrice float64 `json:"predicted_price" example:"3.85"`
	// Whether input validation passed. Always true on a 200 response.
	// example: true
	InputValidationPassed bool `json:"input_validation_passed" example:"true"`
}

// IrisResponse is returned by POST /iris/predict.
type IrisResponse struct {
	// Predicted iris class: 0=setosa, 1=versicolor, 2=virginica.
	// example: 1
	PredictedClass int `json:"predicted_class" example:"1"`
	// Human-readable class name.
	// example: versicolor
	ClassName string `json:"class_name" example:"versicolor"`
	// Whether input validation passed. Always true on a 200 response.
	// example: true
	InputValidationPassed bool `json:"input_validation_passed" example:"true"`
}

// ErrorDetail carries field-level information about a rejected request.
type ErrorDetail struct {
	// Offending field name.
	// example: median_income
	Field string `json:"field,omitempty" example:"median_income"`
	// Value that was submitted for the field, when one was present.
	Value *float64 `json:"value,omitempty"`
	// The constraint that was violated.
	// example: must be greater than 0
	Constraint string `json:"constraint,omitempty" example:"must be greater than 0"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error kind, e.g. ValidationError, PredictionError, RetrainingInProgress.
	// example: ValidationError
	Error string `json:"error" example:"ValidationError"`
	// Detailed error message.
	// example: Input validation failed
	Message string `json:"message" example:"Input validation failed"`
	// Field-level details, one entry per violated constraint.
	Details []ErrorDetail `json:"details,omitempty"`
}

// RetrainRequest is the body of POST /retrain.
type RetrainRequest struct {
	// Model type to retrain: "housing", "iris", or empty for both.
	// example: housing
	ModelType string `json:"model_type,omitempty" example:"housing"`
	// Force retraining even if current performance is acceptable.
	// example: true
	Force bool `json:"force,omitempty" example:"true"`
	// Optional path to an alternate training dataset (CSV).
	// example: data/new_housing_data.csv
	NewDataPath string `json:"new_data_path,omitempty" example:"data/new_housing_data.csv"`
	// If true the job runs in the background and the call returns 202
	// immediately with a task id.
	// example: false
	Background bool `json:"background,omitempty" example:"false"`
}

// RetrainResult describes the outcome of one model type's retrain attempt.
type RetrainResult struct {
	// One of: retrained, skipped, failed.
	// example: retrained
	Status string `json:"status" example:"retrained"`
	// Reason for a skip, e.g. performance_acceptable.
	// example: performance_acceptable
	Reason string `json:"reason,omitempty" example:"performance_acceptable"`
	// Error message when Status is failed.
	Error string `json:"error,omitempty"`
	// Evaluation metrics of the freshly trained model.
	Metrics map[string]float64 `json:"metrics,omitempty"`
	// Number of training samples used.
	// example: 16512
	DataPoints int `json:"data_points,omitempty" example:"16512"`
	// Job start and end times (RFC 3339).
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// RetrainResponse is returned by POST /retrain.
type RetrainResponse struct {
	// Overall status: started (background), completed, skipped, or failed.
	// example: completed
	Status string `json:"status" example:"completed"`
	// Human-readable summary.
	Message string `json:"message"`
	// Background task id when Background was requested.
	// example: retrain_housing_20231201_143022
	TaskID string `json:"task_id,omitempty" example:"retrain_housing_20231201_143022"`
	// Per-model-type results for synchronous runs.
	Results map[string]RetrainResult `json:"results,omitempty"`
}

// RetrainStatusResponse is returned by GET /retrain/status.
type RetrainStatusResponse struct {
	// Per-model-type orchestrator state: idle or running.
	States map[string]string `json:"states"`
	// Last completed result per model type, if any.
	LastResults map[string]RetrainResult `json:"last_results,omitempty"`
}

// ModelInfoResponse is returned by GET /{model}/model-info.
type ModelInfoResponse struct {
	// Algorithm name, e.g. DecisionTree, RandomForest.
	// example: DecisionTree
	ModelName string `json:"model_name" example:"DecisionTree"`
	// Model type (housing or iris).
	// example: housing
	ModelType string `json:"model_type" example:"housing"`
	// Last training timestamp (RFC 3339), null if unknown.
	LastTrained string `json:"last_trained,omitempty"`
	// Current performance metrics, null if never evaluated.
	PerformanceMetrics map[string]float64 `json:"performance_metrics,omitempty"`
	// Path to the serialized model artifact.
	// example: models/housing_decision_tree.json
	ModelPath string `json:"model_path"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Overall service status.
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Whether the active model is loaded, per model type.
	ModelLoaded map[string]bool `json:"model_loaded"`
	// Whether the prediction log database answers pings.
	// example: true
	DatabaseConnected bool `json:"database_connected" example:"true"`
	// Server time (RFC 3339).
	Timestamp string `json:"timestamp"`
}

// AppMetricsResponse is returned by GET /app-metrics. It is distinct from
// the Prometheus /metrics scrape endpoint.
type AppMetricsResponse struct {
	// Total accepted predictions across all model types.
	// example: 42
	TotalPredictions int `json:"total_predictions" example:"42"`
	// Accepted predictions per model type.
	PredictionsByModel map[string]int `json:"predictions_by_model"`
	// Mean predicted housing price over all recorded predictions, when any.
	AveragePrediction *float64 `json:"average_prediction,omitempty"`
	// Time of the report (RFC 3339).
	LastUpdated string `json:"last_updated"`
}
