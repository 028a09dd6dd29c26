package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Engine types
const (
	EngineSidecar     = "sidecar"
	EnginePerspective = "perspective"
	EngineGemini      = "gemini"
)

// Policy variants
const (
	VariantBinary     = "binary"
	VariantMultiLabel = "multi_label"
)

// DefaultThreshold applies to every threshold missing from the file.
const DefaultThreshold = 0.5

// DefaultModelName is the pretrained misogyny/sexism classifier served by the sidecar.
const DefaultModelName = "annahaz/xlm-roberta-base-misogyny-sexism-indomain-mix-bal"

// ModelConfig selects and reaches the inference engine
type ModelConfig struct {
	Engine     string        `yaml:"engine"` // "sidecar", "perspective" or "gemini"
	Name       string        `yaml:"name"`
	URL        string        `yaml:"url"`
	APIKey     string        `yaml:"api_key"`
	Labels     []string      `yaml:"labels"`     // gemini only
	Attributes []string      `yaml:"attributes"` // perspective only
	MaxLength  int           `yaml:"max_length"`
	Timeout    time.Duration `yaml:"timeout"`

	LoadRetries    uint64        `yaml:"load_retries"`
	LoadRetryDelay time.Duration `yaml:"load_retry_delay"`
}

// PolicyConfig holds the decision thresholds. They are read once at startup.
type PolicyConfig struct {
	Variant     string `yaml:"variant"` // "binary" or "multi_label"
	TargetLabel string `yaml:"target_label"`
	// Threshold needs tuning per deployed model; 0.5 is the usual starting point.
	// A score must be strictly greater than its threshold to flag.
	Threshold       float64 `yaml:"threshold"`
	ToxicThreshold  float64 `yaml:"toxic_threshold"`
	InsultThreshold float64 `yaml:"insult_threshold"`
}

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"` // "debug" or "release"
	} `yaml:"server"`

	Model  ModelConfig  `yaml:"model"`
	Policy PolicyConfig `yaml:"policy"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	// Best-effort: secrets may live in .env next to the binary
	_ = godotenv.Load()

	config := newConfig()

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Expand environment variables in secrets and endpoints; an unset
	// variable leaves the field empty so the default applies.
	config.Model.APIKey = os.ExpandEnv(config.Model.APIKey)
	config.Model.URL = os.ExpandEnv(config.Model.URL)

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a configuration with every default applied. It is used
// when the default config file does not exist.
func Default() *Config {
	config := newConfig()
	config.setDefaults()
	return config
}

// newConfig presets the thresholds before decoding, so an explicit 0 in the
// file is kept instead of being taken for unset.
func newConfig() *Config {
	config := &Config{}
	config.Policy.Threshold = DefaultThreshold
	config.Policy.ToxicThreshold = DefaultThreshold
	config.Policy.InsultThreshold = DefaultThreshold
	return config
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}

	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}

	if c.Model.Engine == "" {
		c.Model.Engine = EngineSidecar
	}

	if c.Model.Name == "" && c.Model.Engine == EngineSidecar {
		c.Model.Name = DefaultModelName
	}

	if c.Model.URL == "" && c.Model.Engine == EngineSidecar {
		c.Model.URL = "http://localhost:8001"
	}

	if c.Model.MaxLength == 0 {
		c.Model.MaxLength = 512
	}

	if c.Model.Timeout == 0 {
		c.Model.Timeout = 30 * time.Second
	}

	if c.Model.LoadRetryDelay == 0 {
		c.Model.LoadRetryDelay = 2 * time.Second
	}

	if c.Policy.Variant == "" {
		c.Policy.Variant = VariantBinary
	}

	if c.Policy.TargetLabel == "" {
		c.Policy.TargetLabel = "1"
	}
}

// Validate rejects unknown engines, variants and out-of-range thresholds.
func (c *Config) Validate() error {
	switch c.Model.Engine {
	case EngineSidecar, EnginePerspective, EngineGemini:
	default:
		return fmt.Errorf("unknown model engine %q", c.Model.Engine)
	}

	switch c.Policy.Variant {
	case VariantBinary, VariantMultiLabel:
	default:
		return fmt.Errorf("unknown policy variant %q", c.Policy.Variant)
	}

	if c.Model.MaxLength < 0 {
		return fmt.Errorf("max_length must not be negative, got %d", c.Model.MaxLength)
	}

	for name, v := range map[string]float64{
		"threshold":        c.Policy.Threshold,
		"toxic_threshold":  c.Policy.ToxicThreshold,
		"insult_threshold": c.Policy.InsultThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, v)
		}
	}

	return nil
}
