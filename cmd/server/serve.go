package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"misogyny-detector/internal/handler"
	"misogyny-detector/internal/statistics"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runServer(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Initialize logger
	logger, err := newLogger(cfg.Server.Mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Starting Misogyny Detection Service...")

	classifier, err := newClassifier(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Fatal("Invalid detection policy", zap.Error(err))
	}
	defer classifier.Close()

	if !classifier.Available() {
		logger.Warn("************************************************************")
		logger.Warn("Model is NOT loaded. POST /detect will answer with an error until restart.")
		logger.Warn("************************************************************")
	}

	apiHandler := handler.NewHandler(classifier, statistics.Records(), logger)

	// Setup Gin router
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", serverAddr))

	// Graceful shutdown
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Misogyny Detection Service is running",
		zap.String("port", cfg.Server.Port),
		zap.Bool("model_loaded", classifier.Available()))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}
