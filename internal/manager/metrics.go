package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predictd",
			Subsystem: "ml",
			Name:      "predictions_total",
			Help:      "Total accepted predictions",
		},
		[]string{"model", "name"},
	)

	predictionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "predictd",
			Subsystem: "ml",
			Name:      "prediction_latency_seconds",
			Help:      "Prediction latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	predictionValue = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "predictd",
			Subsystem: "ml",
			Name:      "prediction_value",
			Help:      "Distribution of predicted values",
			Buckets:   []float64{0.5, 1, 1.5, 2, 2.5, 3, 4, 5, 7, 10},
		},
		[]string{"model"},
	)

	validationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predictd",
			Subsystem: "ml",
			Name:      "validation_errors_total",
			Help:      "Total rejected prediction requests",
		},
		[]string{"model"},
	)

	modelErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predictd",
			Subsystem: "ml",
			Name:      "model_errors_total",
			Help:      "Total inference-time failures",
		},
		[]string{"model"},
	)

	retrainTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predictd",
			Subsystem: "ml",
			Name:      "retrain_total",
			Help:      "Total retrain attempts by outcome",
		},
		[]string{"model", "status"},
	)

	retrainDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "predictd",
			Subsystem: "ml",
			Name:      "retrain_duration_seconds",
			Help:      "Retrain job duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"model"},
	)

	lastTrainedTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "predictd",
			Subsystem: "ml",
			Name:      "model_last_trained_timestamp",
			Help:      "Unix time of the active model's last training",
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(
		predictionsTotal, predictionLatency, predictionValue, validationErrorsTotal,
		modelErrorsTotal, retrainTotal, retrainDuration, lastTrainedTimestamp,
	)
}
