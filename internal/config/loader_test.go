package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: :9999
models_dir: /tmp/models
logs_dir: /tmp/logs
db_path: /tmp/predictions.db
allowed_origins: ["http://localhost:3000"]
models:
  housing:
    algorithm: decision_tree
    data_path: /data/housing.csv
    max_depth: 8
  iris:
    algorithm: random_forest
    trees: 25
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.ModelsDir != "/tmp/models" || cfg.LogsDir != "/tmp/logs" || cfg.DBPath != "/tmp/predictions.db" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.Models["housing"].Algorithm != "decision_tree" || cfg.Models["housing"].MaxDepth != 8 {
		t.Fatalf("unexpected housing model config: %+v", cfg.Models["housing"])
	}
	if cfg.Models["iris"].Trees != 25 {
		t.Fatalf("unexpected iris model config: %+v", cfg.Models["iris"])
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","models_dir":"/m","db_path":"/m/p.db","models":{"iris":{"algorithm":"decision_tree","max_depth":4}}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.ModelsDir != "/m" || cfg.DBPath != "/m/p.db" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Models["iris"].Algorithm != "decision_tree" || cfg.Models["iris"].MaxDepth != 4 {
		t.Fatalf("unexpected iris model config: %+v", cfg.Models["iris"])
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nmodels_dir=\"/x\"\nlogs_dir=\"/x/logs\"\n\n[models.housing]\nalgorithm=\"linear_regression\"\ndata_path=\"/data/h.csv\"\ntest_ratio=0.3\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.ModelsDir != "/x" || cfg.LogsDir != "/x/logs" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	mc := cfg.Models["housing"]
	if mc.Algorithm != "linear_regression" || mc.DataPath != "/data/h.csv" || mc.TestRatio != 0.3 {
		t.Fatalf("unexpected housing model config: %+v", mc)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
