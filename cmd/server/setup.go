package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"misogyny-detector/internal/config"
	"misogyny-detector/internal/engine"
	"misogyny-detector/internal/rules"
	"misogyny-detector/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return loadConfigFrom(path, cmd.Flags().Changed("config"))
}

// loadConfigFrom reads path. A missing file at the default location falls
// back to built-in defaults; an explicitly requested file must exist.
func loadConfigFrom(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newClassifier creates the engine and loads the model. Engine or model
// failures are not errors here: the classifier comes back unavailable.
// Only an invalid policy is returned as an error.
func newClassifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*service.Classifier, error) {
	policy, err := service.PolicyFor(cfg.Policy)
	if err != nil {
		return nil, err
	}

	table := rules.Default()
	logger.Info("Rule overrides loaded", zap.Int("count", len(table.Entries())))

	eng, err := engine.New(cfg.Model, logger)
	if err != nil {
		logger.Warn("Failed to create inference engine",
			zap.String("engine", cfg.Model.Engine),
			zap.Error(err))
	} else {
		logger.Info("Loading model",
			zap.String("engine", cfg.Model.Engine),
			zap.String("model", cfg.Model.Name),
			zap.String("variant", cfg.Policy.Variant))
	}

	return service.NewClassifier(ctx, eng, policy, table, service.LoadOptions{
		Retries:    cfg.Model.LoadRetries,
		RetryDelay: cfg.Model.LoadRetryDelay,
	}, logger), nil
}
