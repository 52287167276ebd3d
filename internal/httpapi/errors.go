package httpapi

import (
	"encoding/json"
	"net/http"

	"predictd/internal/domain"
	"predictd/internal/manager"
	"predictd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: kind, Message: msg})
}

// writeValidationError maps a multi-violation validation failure to 422 with
// one detail entry per violated constraint.
func writeValidationError(w http.ResponseWriter, ve *domain.ValidationError) {
	details := make([]types.ErrorDetail, 0, len(ve.Violations))
	for _, v := range ve.Violations {
		d := types.ErrorDetail{Field: v.Field, Constraint: v.Constraint}
		if v.HasValue {
			value := v.Value
			d.Value = &value
		}
		details = append(details, d)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{
		Error:   "ValidationError",
		Message: "Input validation failed",
		Details: details,
	})
}

// writeServiceError maps well-known service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) int {
	if ve, ok := err.(*domain.ValidationError); ok {
		writeValidationError(w, ve)
		return http.StatusUnprocessableEntity
	}
	switch {
	case manager.IsUnknownModel(err):
		writeJSONError(w, http.StatusNotFound, "NotFound", err.Error())
		return http.StatusNotFound
	case manager.IsRetrainInProgress(err):
		writeJSONError(w, http.StatusConflict, "RetrainingInProgress", err.Error())
		return http.StatusConflict
	case manager.IsPredictionError(err):
		writeJSONError(w, http.StatusInternalServerError, "PredictionError", err.Error())
		return http.StatusInternalServerError
	}
	if he, ok := err.(HTTPError); ok {
		writeJSONError(w, he.StatusCode(), "Error", he.Error())
		return he.StatusCode()
	}
	writeJSONError(w, http.StatusInternalServerError, "InternalError", err.Error())
	return http.StatusInternalServerError
}
