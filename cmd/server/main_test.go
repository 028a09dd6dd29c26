package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"misogyny-detector/internal/config"
	"misogyny-detector/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newSidecar(t *testing.T, logits []float64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/model/load":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"model_name":   config.DefaultModelName,
				"id2label":     map[string]string{"0": "0", "1": "1"},
				"problem_type": "single_label_classification",
			})
		case "/api/v1/model/logits":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"logits": [][]float64{logits},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// runClassify executes the classify subcommand and splits its output into
// the verdict object and the outcome line.
func runClassify(t *testing.T, configPath string, text ...string) (map[string]interface{}, string) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"classify", "--config", configPath}, text...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	body, outcome, found := strings.Cut(out.String(), "\noutcome: ")
	require.True(t, found, out.String())

	var verdict map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &verdict), body)
	return verdict, strings.TrimSpace(outcome)
}

func TestClassifyCommandSidecar(t *testing.T) {
	srv := newSidecar(t, []float64{-2, 2})
	path := writeConfig(t, fmt.Sprintf("model:\n  engine: sidecar\n  url: %s\n", srv.URL))

	verdict, outcome := runClassify(t, path, "she", "should", "not", "lead")
	assert.Equal(t, "she should not lead", verdict["text"])
	assert.Equal(t, true, verdict["is_misogynistic"])
	assert.InDelta(t, 0.982, verdict["score_misogyny"], 1e-3)
	assert.Nil(t, verdict["rule_applied"])
	assert.Nil(t, verdict["error"])
	assert.Equal(t, "positive", outcome)
}

func TestClassifyCommandRuleOverride(t *testing.T) {
	srv := newSidecar(t, []float64{5, -5})
	path := writeConfig(t, fmt.Sprintf("model:\n  url: %s\n", srv.URL))

	verdict, outcome := runClassify(t, path, "typical women driver")
	assert.Equal(t, "misogynistic_stereotype", verdict["rule_applied"])
	assert.Equal(t, 1.0, verdict["score_misogyny"])
	assert.Equal(t, "positive", outcome)
}

func TestClassifyCommandEngineCreationFails(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "")
	path := writeConfig(t, "model:\n  engine: gemini\n  api_key: ${TEST_GEMINI_KEY}\n")

	verdict, outcome := runClassify(t, path, "typical women driver")
	assert.Equal(t, false, verdict["is_misogynistic"])
	assert.Equal(t, 0.0, verdict["score_misogyny"])
	assert.Equal(t, service.MsgUnavailable, verdict["error"])
	assert.Equal(t, "negative", outcome)
}

func TestNewClassifier(t *testing.T) {
	t.Run("engine creation failure degrades", func(t *testing.T) {
		for _, engineName := range []string{config.EngineGemini, config.EnginePerspective} {
			cfg := config.Default()
			cfg.Model.Engine = engineName

			c, err := newClassifier(context.Background(), cfg, zap.NewNop())
			require.NoError(t, err, engineName)
			assert.False(t, c.Available(), engineName)
			assert.NoError(t, c.Close())
		}
	})

	t.Run("unreachable sidecar degrades", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		cfg := config.Default()
		cfg.Model.URL = srv.URL

		c, err := newClassifier(context.Background(), cfg, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, c.Available())
	})

	t.Run("invalid policy is an error", func(t *testing.T) {
		cfg := config.Default()
		cfg.Policy.Variant = "ternary"

		_, err := newClassifier(context.Background(), cfg, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestLoadConfigFrom(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yml")

	cfg, err := loadConfigFrom(missing, false)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = loadConfigFrom(missing, true)
	assert.Error(t, err)

	_, err = loadConfigFrom(writeConfig(t, "model:\n  engine: onnx\n"), false)
	assert.Error(t, err)
}
