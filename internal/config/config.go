package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Printer   PrinterConfig   `yaml:"printer"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Generator GeneratorConfig `yaml:"generator"`
}

type PrinterConfig struct {
	SecondsPerPage float64 `yaml:"seconds_per_page"`
}

type StorageConfig struct {
	Dir         string `yaml:"dir"`
	WaitingFile string `yaml:"waiting_file"`
	RunningFile string `yaml:"running_file"`
	DoneFile    string `yaml:"done_file"`
	Restore     bool   `yaml:"restore"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	// Textfile is a node-exporter textfile path; empty disables metrics.
	Textfile string `yaml:"textfile"`
}

type GeneratorConfig struct {
	// Seed for random jobs; 0 seeds from the wall clock.
	Seed int64 `yaml:"seed"`
}

func defaults() *Config {
	return &Config{
		Printer: PrinterConfig{
			SecondsPerPage: 2.0,
		},
		Storage: StorageConfig{
			Dir:         ".",
			WaitingFile: "waiting.csv",
			RunningFile: "running.csv",
			DoneFile:    "done.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func Default() *Config {
	return defaults()
}

func Load(configPath string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func LoadFromEnv() *Config {
	cfg := defaults()
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overrides fields from PRINTSIM_* variables, reading a .env file
// in the working directory first if there is one.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load(".env")

	if v := os.Getenv("PRINTSIM_SPEED"); v != "" {
		if speed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Printer.SecondsPerPage = speed
		}
	}

	if v := os.Getenv("PRINTSIM_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}

	if v := os.Getenv("PRINTSIM_RESTORE"); v != "" {
		if restore, err := strconv.ParseBool(v); err == nil {
			c.Storage.Restore = restore
		}
	}

	if v := os.Getenv("PRINTSIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv("PRINTSIM_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv("PRINTSIM_METRICS_TEXTFILE"); v != "" {
		c.Metrics.Textfile = v
	}
}

func (c *Config) Validate() error {
	if !(c.Printer.SecondsPerPage > 0) {
		return fmt.Errorf("printer seconds per page must be positive, got %v", c.Printer.SecondsPerPage)
	}

	if c.Storage.Dir == "" {
		return fmt.Errorf("storage dir is required")
	}

	files := map[string]string{
		"waiting": c.Storage.WaitingFile,
		"running": c.Storage.RunningFile,
		"done":    c.Storage.DoneFile,
	}
	seen := make(map[string]string)
	for name, file := range files {
		if file == "" {
			return fmt.Errorf("storage %s file is required", name)
		}
		if other, ok := seen[file]; ok {
			return fmt.Errorf("storage %s and %s files must differ, both are %s", other, name, file)
		}
		seen[file] = name
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json":  true,
		"text":  true,
		"plain": true,
	}

	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text, plain)", c.Logging.Format)
	}

	return nil
}
