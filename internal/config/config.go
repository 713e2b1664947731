// Package config loads the process-wide Config for the driver CLI.
//
// Loading strategy, adapted from the teacher's internal/config/config.go:
//  1. Load .env for secrets and the DRIVER_ENV selector.
//  2. Load configs/{env}.yaml for the bulk of the settings.
//  3. Environment variables override individual YAML fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment selects which configs/{env}.yaml file to layer in.
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// ModeKind selects the Mode implementation the orchestrator builds against.
type ModeKind string

const (
	ModeProcess ModeKind = "process"
	ModeDocker  ModeKind = "docker"
)

// YAMLConfig mirrors the on-disk YAML layout.
type YAMLConfig struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Mode     ModeConfig     `yaml:"mode"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// PipelineConfig controls pool sizing and timeout classes (spec.md §3/§5).
type PipelineConfig struct {
	NumBuilderThreads     int     `yaml:"num_builder_threads"`
	NumRunnerThreads      int     `yaml:"num_runner_threads"`
	ReadyQueueSize        int     `yaml:"ready_queue_size"`
	FirstMonitorPort      int     `yaml:"first_monitor_port"`
	DefaultMonitorPort    int     `yaml:"default_monitor_port"`
	MonitorTimeoutSeconds int     `yaml:"monitor_timeout_seconds"`
	SmallTimeoutSeconds   int     `yaml:"small_timeout_seconds"`
	LargeTimeoutSeconds   int     `yaml:"large_timeout_seconds"`
	TimeoutMultiplier     float64 `yaml:"timeout_multiplier"`
	LocalTemp             string  `yaml:"local_temp"`
}

// ModeConfig selects and configures the execution backend.
type ModeConfig struct {
	Kind       ModeKind `yaml:"kind"`
	DockerHost string   `yaml:"docker_host"`
	Image      string   `yaml:"image"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig controls the Prometheus exporter.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Addr      string `yaml:"addr"`
}

// Config is the final, resolved configuration consumed by cmd/actiondriver.
type Config struct {
	Env      Environment
	Pipeline PipelineConfig
	Mode     ModeConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
}

// Load resolves the final Config from .env, YAML, and environment overrides.
func Load() *Config {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("DRIVER_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)
	applyEnvOverrides(yamlCfg)

	return &Config{
		Env:      env,
		Pipeline: yamlCfg.Pipeline,
		Mode:     yamlCfg.Mode,
		Logging:  yamlCfg.Logging,
		Metrics:  yamlCfg.Metrics,
	}
}

func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		Pipeline: PipelineConfig{
			NumBuilderThreads:     4,
			NumRunnerThreads:      4,
			ReadyQueueSize:        16,
			FirstMonitorPort:      40000,
			DefaultMonitorPort:    8787,
			MonitorTimeoutSeconds: 10,
			SmallTimeoutSeconds:   60,
			LargeTimeoutSeconds:   600,
			TimeoutMultiplier:     1.0,
			LocalTemp:             os.TempDir(),
		},
		Mode: ModeConfig{Kind: ModeProcess},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "actiondriver",
			Addr:      ":9090",
		},
	}

	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	cfg.Pipeline.validate()
	return cfg
}

// applyEnvOverrides lets individual settings be overridden without editing
// YAML, the same override layer the teacher's config.go applies to secrets.
func applyEnvOverrides(cfg *YAMLConfig) {
	if v := os.Getenv("DRIVER_MODE"); v != "" {
		cfg.Mode.Kind = ModeKind(v)
	}
	if v := os.Getenv("DRIVER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DRIVER_NUM_RUNNER_THREADS"); v != "" {
		if n, err := parseIntOrZero(v); err == nil && n > 0 {
			cfg.Pipeline.NumRunnerThreads = n
		}
	}
}

func parseIntOrZero(v string) (int, error) {
	var n int
	_, err := fmt.Sscanf(v, "%d", &n)
	return n, err
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest reports whether the resolved environment is the test environment.
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// SmallTimeout applies TimeoutMultiplier to SmallTimeoutSeconds (spec.md §9
// open question, resolved per vogar's --timeout-multiplier).
func (c *Config) SmallTimeout() time.Duration {
	return scaledSeconds(c.Pipeline.SmallTimeoutSeconds, c.Pipeline.TimeoutMultiplier)
}

// LargeTimeout applies TimeoutMultiplier to LargeTimeoutSeconds.
func (c *Config) LargeTimeout() time.Duration {
	return scaledSeconds(c.Pipeline.LargeTimeoutSeconds, c.Pipeline.TimeoutMultiplier)
}

func scaledSeconds(seconds int, multiplier float64) time.Duration {
	if multiplier <= 0 {
		multiplier = 1.0
	}
	return time.Duration(float64(seconds)*multiplier*1000) * time.Millisecond
}

// validate fills in defaults for anything the YAML left at its zero value.
func (p *PipelineConfig) validate() {
	if p.NumBuilderThreads == 0 {
		p.NumBuilderThreads = 4
	}
	if p.NumRunnerThreads == 0 {
		p.NumRunnerThreads = 4
	}
	if p.ReadyQueueSize == 0 {
		p.ReadyQueueSize = 16
	}
	if p.MonitorTimeoutSeconds == 0 {
		p.MonitorTimeoutSeconds = 10
	}
	if p.SmallTimeoutSeconds == 0 {
		p.SmallTimeoutSeconds = 60
	}
	if p.LargeTimeoutSeconds == 0 {
		p.LargeTimeoutSeconds = 600
	}
	if p.TimeoutMultiplier == 0 {
		p.TimeoutMultiplier = 1.0
	}
	if p.LocalTemp == "" {
		p.LocalTemp = os.TempDir()
	}
}
