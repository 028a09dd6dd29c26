package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: \"8080\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, EngineSidecar, cfg.Model.Engine)
	assert.Equal(t, DefaultModelName, cfg.Model.Name)
	assert.Equal(t, "http://localhost:8001", cfg.Model.URL)
	assert.Equal(t, 512, cfg.Model.MaxLength)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Model.LoadRetryDelay)
	assert.Equal(t, VariantBinary, cfg.Policy.Variant)
	assert.Equal(t, "1", cfg.Policy.TargetLabel)
	assert.Equal(t, 0.5, cfg.Policy.Threshold)
}

func TestLoadConfigUnsetEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("TEST_INFERENCE_URL", "")

	cfg, err := LoadConfig(writeConfig(t, "model:\n  url: ${TEST_INFERENCE_URL}\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8001", cfg.Model.URL)
}

func TestLoadConfigFull(t *testing.T) {
	t.Setenv("TEST_PERSPECTIVE_KEY", "secret-key")

	cfg, err := LoadConfig(writeConfig(t, `
server:
  port: "9000"
  mode: release
model:
  engine: perspective
  api_key: ${TEST_PERSPECTIVE_KEY}
  attributes: [TOXICITY, INSULT]
  timeout: 5s
  load_retries: 4
  load_retry_delay: 250ms
policy:
  variant: multi_label
  toxic_threshold: 0.7
  insult_threshold: 0.6
`))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, EnginePerspective, cfg.Model.Engine)
	assert.Equal(t, "secret-key", cfg.Model.APIKey)
	assert.Equal(t, []string{"TOXICITY", "INSULT"}, cfg.Model.Attributes)
	assert.Empty(t, cfg.Model.Name)
	assert.Equal(t, 5*time.Second, cfg.Model.Timeout)
	assert.Equal(t, uint64(4), cfg.Model.LoadRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Model.LoadRetryDelay)
	assert.Equal(t, VariantMultiLabel, cfg.Policy.Variant)
	assert.Equal(t, 0.7, cfg.Policy.ToxicThreshold)
	assert.Equal(t, 0.6, cfg.Policy.InsultThreshold)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown engine", "model:\n  engine: onnx\n"},
		{"unknown variant", "policy:\n  variant: ternary\n"},
		{"threshold too high", "policy:\n  threshold: 1.5\n"},
		{"negative max length", "model:\n  max_length: -1\n"},
		{"malformed yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadConfigZeroThresholdKept(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "policy:\n  threshold: 0\n  toxic_threshold: 0.0\n"))
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Policy.Threshold)
	assert.Equal(t, 0.0, cfg.Policy.ToxicThreshold)
	assert.Equal(t, DefaultThreshold, cfg.Policy.InsultThreshold)
}

func TestLoadConfigEmptyPolicyUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "policy:\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultThreshold, cfg.Policy.Threshold)
	assert.Equal(t, DefaultThreshold, cfg.Policy.ToxicThreshold)
	assert.Equal(t, DefaultThreshold, cfg.Policy.InsultThreshold)
}

func TestValidateMaxLengthMessage(t *testing.T) {
	cfg := Default()
	cfg.Model.MaxLength = -1
	assert.EqualError(t, cfg.Validate(), "max_length must not be negative, got -1")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, DefaultModelName, cfg.Model.Name)
	assert.Equal(t, DefaultThreshold, cfg.Policy.Threshold)
}
