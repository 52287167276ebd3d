package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"predictd/internal/config"
	"predictd/internal/domain"
	"predictd/internal/httpapi"
	"predictd/internal/manager"
	"predictd/internal/monitor"
	"predictd/internal/predlog"
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Flags with environment variable defaults
	addr := flag.String("addr", envDefault("PREDICTD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	configPath := flag.String("config", envDefault("PREDICTD_CONFIG", ""), "Optional config file (.yaml/.yml/.json/.toml)")
	modelsDir := flag.String("models-dir", envDefault("PREDICTD_MODELS_DIR", "models"), "Directory for serialized model artifacts")
	logsDir := flag.String("logs-dir", envDefault("PREDICTD_LOGS_DIR", "logs"), "Directory for NDJSON prediction logs")
	dbPath := flag.String("db-path", envDefault("PREDICTD_DB_PATH", "predictions.db"), "Path to the SQLite prediction log database")
	housingData := flag.String("housing-data", envDefault("PREDICTD_HOUSING_DATA", ""), "Path to the housing training CSV")
	irisData := flag.String("iris-data", envDefault("PREDICTD_IRIS_DATA", ""), "Path to the iris training CSV (built-in sample when empty)")
	corsEnabled := flag.Bool("cors-enabled", false, "Enable CORS middleware")
	corsOrigins := flag.String("cors-origins", "*", "Comma-separated allowed CORS origins")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "predictd").Logger()

	var fileCfg config.Config
	if *configPath != "" {
		var err error
		fileCfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Str("path", *configPath).Err(err).Msg("failed to load config")
		}
	}

	// Flags passed on the command line win over the config file.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if fileCfg.Addr != "" && !set["addr"] {
		*addr = fileCfg.Addr
	}
	if fileCfg.ModelsDir != "" && !set["models-dir"] {
		*modelsDir = fileCfg.ModelsDir
	}
	if fileCfg.LogsDir != "" && !set["logs-dir"] {
		*logsDir = fileCfg.LogsDir
	}
	if fileCfg.DBPath != "" && !set["db-path"] {
		*dbPath = fileCfg.DBPath
	}

	if err := os.MkdirAll(*modelsDir, 0o755); err != nil {
		log.Fatal().Str("dir", *modelsDir).Err(err).Msg("failed to create models dir")
	}

	store, err := predlog.Open(*dbPath)
	if err != nil {
		log.Fatal().Str("path", *dbPath).Err(err).Msg("failed to open prediction log database")
	}
	defer store.Close()

	recorders := make(map[string]*predlog.Recorder)
	for _, name := range domain.Names() {
		rec, err := predlog.NewRecorder(store, name, *logsDir)
		if err != nil {
			log.Fatal().Str("model", name).Err(err).Msg("failed to open prediction log file")
		}
		defer rec.Close()
		recorders[name] = rec
	}

	models := make(map[string]manager.ModelConfig)
	thresholds := make(map[string]monitor.Threshold)
	for name, mc := range fileCfg.Models {
		models[name] = manager.ModelConfig{
			Algorithm: mc.Algorithm,
			Fallback:  mc.Fallback,
			DataPath:  mc.DataPath,
			MaxDepth:  mc.MaxDepth,
			Trees:     mc.Trees,
			TestRatio: mc.TestRatio,
			Seed:      mc.Seed,
		}
		if mc.MetricName != "" {
			thresholds[name] = monitor.Threshold{Metric: mc.MetricName, Min: mc.MetricMin}
		}
	}
	if *housingData != "" {
		mc := models[domain.Housing]
		mc.DataPath = *housingData
		models[domain.Housing] = mc
	}
	if *irisData != "" {
		mc := models[domain.Iris]
		mc.DataPath = *irisData
		models[domain.Iris] = mc
	}

	mon := monitor.NewWithThresholds(store, thresholds)
	mgr := manager.New(manager.Config{ModelsDir: *modelsDir, Models: models}, store, recorders, mon, log)

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	if err := mgr.Bootstrap(baseCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap models")
	}

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	origins := fileCfg.AllowedOrigins
	if len(origins) == 0 {
		origins = strings.Split(*corsOrigins, ",")
	}
	httpapi.SetCORSOptions(*corsEnabled, origins,
		[]string{"GET", "POST", "OPTIONS"},
		[]string{"Accept", "Content-Type", "X-Log-Level"})

	mux := httpapi.NewMux(mgr)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Info().Str("addr", *addr).Str("models_dir", *modelsDir).Msg("predictd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}
