package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	tests := []struct {
		input string
		want  Environment
	}{
		{"dev", EnvDevelopment},
		{"test", EnvTest},
		{"prod", EnvProduction},
		{"production", EnvProduction},
		{"", EnvDevelopment},
		{"unknown", EnvDevelopment},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseEnv(tt.input))
	}
}

func TestPipelineConfig_ValidateFillsDefaults(t *testing.T) {
	p := &PipelineConfig{}
	p.validate()

	assert.Equal(t, 4, p.NumBuilderThreads)
	assert.Equal(t, 4, p.NumRunnerThreads)
	assert.Equal(t, 16, p.ReadyQueueSize)
	assert.Equal(t, 10, p.MonitorTimeoutSeconds)
	assert.Equal(t, 60, p.SmallTimeoutSeconds)
	assert.Equal(t, 600, p.LargeTimeoutSeconds)
	assert.Equal(t, 1.0, p.TimeoutMultiplier)
	assert.NotEmpty(t, p.LocalTemp)
}

func TestConfig_TimeoutsApplyMultiplier(t *testing.T) {
	cfg := &Config{Pipeline: PipelineConfig{
		SmallTimeoutSeconds: 60,
		LargeTimeoutSeconds: 600,
		TimeoutMultiplier:   2.5,
	}}

	assert.Equal(t, 150*time.Second, cfg.SmallTimeout())
	assert.Equal(t, 1500*time.Second, cfg.LargeTimeout())
}

func TestConfig_TimeoutMultiplierDefaultsToOne(t *testing.T) {
	cfg := &Config{Pipeline: PipelineConfig{SmallTimeoutSeconds: 30}}
	assert.Equal(t, 30*time.Second, cfg.SmallTimeout())
}

func TestConfig_IsTest(t *testing.T) {
	assert.True(t, (&Config{Env: EnvTest}).IsTest())
	assert.False(t, (&Config{Env: EnvProduction}).IsTest())
}
