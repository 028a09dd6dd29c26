// Package engine builds the inference engine selected in configuration.
package engine

import (
	"errors"
	"fmt"

	"misogyny-detector/internal/config"
	"misogyny-detector/internal/inference"
	"misogyny-detector/internal/inference/gemini"
	"misogyny-detector/internal/inference/perspective"
	"misogyny-detector/internal/inference/sidecar"

	"go.uber.org/zap"
)

// ErrUnknownEngine is returned for an engine type no adapter serves.
var ErrUnknownEngine = errors.New("unknown inference engine")

// New creates the engine for cfg. It does not load the model; the
// classifier does that so load failures degrade instead of aborting startup.
func New(cfg config.ModelConfig, logger *zap.Logger) (inference.Engine, error) {
	var (
		engine inference.Engine
		err    error
	)

	switch cfg.Engine {
	case config.EngineSidecar:
		engine, err = sidecar.NewClient(sidecar.Config{
			BaseURL:   cfg.URL,
			ModelName: cfg.Name,
			MaxLength: cfg.MaxLength,
			Timeout:   cfg.Timeout,
		}, logger)
	case config.EnginePerspective:
		engine, err = perspective.NewClient(perspective.Config{
			APIKey:     cfg.APIKey,
			Attributes: cfg.Attributes,
			Timeout:    cfg.Timeout,
		}, logger)
	case config.EngineGemini:
		engine, err = gemini.NewClient(gemini.Config{
			APIKey:    cfg.APIKey,
			ModelName: cfg.Name,
			Labels:    cfg.Labels,
		}, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s engine: %w", cfg.Engine, err)
	}

	logger.Info("Inference engine created",
		zap.String("engine", cfg.Engine),
		zap.String("model", cfg.Name))

	return engine, nil
}
