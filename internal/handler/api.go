package handler

import (
	"net/http"

	"misogyny-detector/internal/docs"
	"misogyny-detector/internal/models"
	"misogyny-detector/internal/service"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Banner is returned by GET /
const Banner = "Misogyny Detection Backend is running! Endpoints: /detect (POST), /statistics (GET)"

const (
	msgInvalidInput     = "Invalid input. Provide 'text' in JSON body."
	msgStatsUnavailable = "Statistics data not available"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler handles HTTP requests
type Handler struct {
	classifier *service.Classifier
	statistics []models.StatisticRecord
	logger     *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(classifier *service.Classifier, statistics []models.StatisticRecord, logger *zap.Logger) *Handler {
	return &Handler{
		classifier: classifier,
		statistics: statistics,
		logger:     logger,
	}
}

// NewRouter creates the gin engine with middleware and all routes registered
func NewRouter(h *Handler) *gin.Engine {
	router := gin.Default()
	router.Use(CORS(), RequestID())
	h.RegisterRoutes(router)
	return router
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Index)
	r.POST("/detect", h.Detect)
	r.GET("/statistics", h.GetStatistics)

	// Health check
	r.GET("/health", h.HealthCheck)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// Index godoc
// @Summary Service banner
// @Produce plain
// @Success 200 {string} string
// @Router / [get]
func (h *Handler) Index(c *gin.Context) {
	c.String(http.StatusOK, Banner)
}

// Detect godoc
// @Summary Classify a text
// @Description Runs the phrase overrides, then the model. Classification failures are reported in the error field with status 200.
// @Accept json
// @Produce json
// @Param request body models.DetectRequest true "Text to classify"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /detect [post]
func (h *Handler) Detect(c *gin.Context) {
	var req models.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidInput})
		return
	}

	verdict := h.classifier.Classify(c.Request.Context(), *req.Text)

	fields := []zap.Field{
		zap.String("request_id", GetRequestID(c)),
		zap.Bool("flagged", verdict.IsFlagged),
		zap.Float64("score", verdict.Score),
	}
	if verdict.RuleApplied != nil {
		fields = append(fields, zap.String("rule", *verdict.RuleApplied))
	}
	if verdict.Error != nil {
		fields = append(fields, zap.String("error", *verdict.Error))
		h.logger.Warn("Detection returned an error", fields...)
	} else {
		h.logger.Info("Text classified", fields...)
	}

	// Always 200: callers inspect the error field, not the status.
	c.JSON(http.StatusOK, verdict)
}

// GetStatistics godoc
// @Summary Impact statistics
// @Produce json
// @Success 200 {array} models.StatisticRecord
// @Failure 500 {object} ErrorResponse
// @Router /statistics [get]
func (h *Handler) GetStatistics(c *gin.Context) {
	if len(h.statistics) == 0 {
		h.logger.Error("Statistics data not found in backend")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgStatsUnavailable})
		return
	}

	c.JSON(http.StatusOK, h.statistics)
}

// HealthCheck godoc
// @Summary Service health and model state
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(c *gin.Context) {
	status := "healthy"
	if !h.classifier.Available() {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"service":      "misogyny-detector",
		"version":      docs.SwaggerInfo.Version,
		"model_loaded": h.classifier.Available(),
		"model":        h.classifier.GetModelInfo(),
	})
}
