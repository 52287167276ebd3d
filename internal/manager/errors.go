package manager

// retrainInProgressError signals a retrain request for a model type whose
// job is already running. Mapped to 409; the request is never queued.
type retrainInProgressError struct{ modelType string }

func (e retrainInProgressError) Error() string {
	return "retraining already in progress: " + e.modelType
}

// ErrRetrainInProgress constructs a retrainInProgressError.
func ErrRetrainInProgress(modelType string) error { return retrainInProgressError{modelType: modelType} }

// IsRetrainInProgress reports whether err indicates an overlapping retrain
// request.
func IsRetrainInProgress(err error) bool {
	_, ok := err.(retrainInProgressError)
	return ok
}

// unknownModelError signals a model type outside {housing, iris}.
type unknownModelError struct{ modelType string }

func (e unknownModelError) Error() string { return "unknown model type: " + e.modelType }

// ErrUnknownModel constructs an unknownModelError.
func ErrUnknownModel(modelType string) error { return unknownModelError{modelType: modelType} }

// IsUnknownModel reports whether the error names a missing model type.
func IsUnknownModel(err error) bool {
	_, ok := err.(unknownModelError)
	return ok
}

// predictionError signals a server-side failure at inference time (feature
// mapping or the model itself). Mapped to 500 and never retried.
type predictionError struct{ msg string }

func (e predictionError) Error() string { return e.msg }

func errPrediction(msg string) error { return predictionError{msg: msg} }

// IsPredictionError reports whether err is an inference-time failure.
func IsPredictionError(err error) bool {
	_, ok := err.(predictionError)
	return ok
}
