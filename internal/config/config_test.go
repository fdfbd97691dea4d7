package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Printer.SecondsPerPage != 2.0 {
		t.Errorf("expected default speed 2.0, got %v", cfg.Printer.SecondsPerPage)
	}
	if cfg.Storage.WaitingFile != "waiting.csv" || cfg.Storage.RunningFile != "running.csv" || cfg.Storage.DoneFile != "done.csv" {
		t.Errorf("unexpected default file names: %+v", cfg.Storage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_OverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printsim.yaml")
	data := `
printer:
  seconds_per_page: 0.5
storage:
  dir: /var/lib/printsim
  restore: true
logging:
  level: debug
  format: json
metrics:
  textfile: /tmp/printsim.prom
generator:
  seed: 42
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Printer.SecondsPerPage != 0.5 || cfg.Storage.Dir != "/var/lib/printsim" || !cfg.Storage.Restore {
		t.Errorf("unexpected printer/storage config: %+v %+v", cfg.Printer, cfg.Storage)
	}
	// keys missing from the file keep their defaults
	if cfg.Storage.DoneFile != "done.csv" {
		t.Errorf("expected default done file, got %q", cfg.Storage.DoneFile)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Metrics.Textfile != "/tmp/printsim.prom" || cfg.Generator.Seed != 42 {
		t.Errorf("unexpected metrics/generator config: %+v %+v", cfg.Metrics, cfg.Generator)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("printer: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PRINTSIM_SPEED", "1.25")
	t.Setenv("PRINTSIM_DATA_DIR", "/data")
	t.Setenv("PRINTSIM_RESTORE", "true")
	t.Setenv("PRINTSIM_LOG_LEVEL", "warn")
	t.Setenv("PRINTSIM_LOG_FORMAT", "plain")
	t.Setenv("PRINTSIM_METRICS_TEXTFILE", "/tmp/m.prom")

	cfg := LoadFromEnv()
	if cfg.Printer.SecondsPerPage != 1.25 {
		t.Errorf("expected speed 1.25, got %v", cfg.Printer.SecondsPerPage)
	}
	if cfg.Storage.Dir != "/data" || !cfg.Storage.Restore {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "plain" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Metrics.Textfile != "/tmp/m.prom" {
		t.Errorf("unexpected metrics textfile %q", cfg.Metrics.Textfile)
	}
}

func TestLoadFromEnv_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("PRINTSIM_SPEED", "")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PRINTSIM_SPEED=3.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set
	os.Unsetenv("PRINTSIM_SPEED")

	cfg := LoadFromEnv()
	if cfg.Printer.SecondsPerPage != 3.5 {
		t.Errorf("expected speed 3.5 from .env, got %v", cfg.Printer.SecondsPerPage)
	}
}

func TestLoadFromEnv_IgnoresBadNumbers(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PRINTSIM_SPEED", "fast")
	t.Setenv("PRINTSIM_RESTORE", "maybe")

	cfg := LoadFromEnv()
	if cfg.Printer.SecondsPerPage != 2.0 || cfg.Storage.Restore {
		t.Errorf("expected defaults for unparsable values, got %+v %+v", cfg.Printer, cfg.Storage)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero speed", func(c *Config) { c.Printer.SecondsPerPage = 0 }},
		{"negative speed", func(c *Config) { c.Printer.SecondsPerPage = -1 }},
		{"empty dir", func(c *Config) { c.Storage.Dir = "" }},
		{"empty waiting file", func(c *Config) { c.Storage.WaitingFile = "" }},
		{"shared file", func(c *Config) { c.Storage.DoneFile = c.Storage.WaitingFile }},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
