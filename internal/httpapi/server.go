package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"predictd/internal/domain"
	"predictd/internal/manager"
	"predictd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Predict(ctx context.Context, modelType string, fields map[string]float64) (manager.Result, error)
	Retrain(ctx context.Context, req types.RetrainRequest) (types.RetrainResponse, error)
	Submit(req types.RetrainRequest) (types.RetrainResponse, error)
	Status() types.RetrainStatusResponse
	ModelInfo(modelType string) (types.ModelInfoResponse, error)
	Health() types.HealthResponse
	AppMetrics() (types.AppMetricsResponse, error)
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/{model}/predict", func(w http.ResponseWriter, r *http.Request) {
		modelType := chi.URLParam(r, "model")
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "UnsupportedMediaType", "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var fields map[string]float64
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeJSONError(w, http.StatusBadRequest, "BadRequest", "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Str("path", r.URL.Path).Str("model", modelType)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("predict start")
		}

		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		result, err := svc.Predict(joinedCtx, modelType, fields)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := writeServiceError(w, err)
			if lvl >= LevelInfo && zlog != nil {
				z := zlog.Info().Int("status", status).Dur("dur", time.Since(start))
				if rid := middleware.GetReqID(r.Context()); rid != "" {
					z = z.Str("request_id", rid)
				}
				z.Err(err).Msg("predict end")
			}
			return
		}

		var body any
		switch result.Kind {
		case domain.Regression:
			body = types.HousingResponse{PredictedPrice: result.Value, InputValidationPassed: true}
		case domain.Classification:
			body = types.IrisResponse{PredictedClass: result.Class, ClassName: result.ClassName, InputValidationPassed: true}
		}
		writeJSON(w, http.StatusOK, body)
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Int("status", 200).Dur("dur", time.Since(start))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("predict end")
		}
	})

	r.Get("/{model}/model-info", func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.ModelInfo(chi.URLParam(r, "model"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	})

	r.Post("/retrain", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.RetrainRequest
		// An empty body means "both model types, respect the monitor".
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, "BadRequest", "invalid JSON body")
			return
		}

		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		var (
			resp types.RetrainResponse
			err  error
		)
		if req.Background {
			resp, err = svc.Submit(req)
		} else {
			resp, err = svc.Retrain(joinedCtx, req)
		}
		if err != nil {
			// An unknown model type arrived in the request body, not the
			// URL path, so it is a validation failure rather than a 404.
			if manager.IsUnknownModel(err) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				_ = json.NewEncoder(w).Encode(types.ErrorResponse{
					Error:   "ValidationError",
					Message: "Input validation failed",
					Details: []types.ErrorDetail{{Field: "model_type", Constraint: err.Error()}},
				})
				return
			}
			writeServiceError(w, err)
			return
		}
		status := http.StatusOK
		if req.Background {
			status = http.StatusAccepted
		}
		writeJSON(w, status, resp)
	})

	r.Get("/retrain/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Health())
	})

	r.Get("/app-metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics, err := svc.AppMetrics()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, metrics)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}
