// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rotator-service/internal/config"
	"rotator-service/internal/service"
	"rotator-service/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	rotatorService *service.RotatorService
	websocket      *WebSocketHandler
	config         *config.Config
	startTime      time.Time
	logger         *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler. websocket may be nil.
func NewHealthHandler(rotatorService *service.RotatorService, websocket *WebSocketHandler, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		rotatorService: rotatorService,
		websocket:      websocket,
		config:         config,
		startTime:      time.Now(),
		logger:         utils.NewServiceLogger(logger, "health-handler"),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/", h.Root)
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// Root reports that the server is up
// @Summary Server banner
// @Tags Health
// @Produce plain
// @Success 200 {string} string "The server is running!"
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "The server is running!")
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Get overall service health including the rotator connection and transport statistics
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    make(map[string]CheckResult),
	}

	status := h.rotatorService.Status()
	if status.Connected {
		health.Checks["rotator"] = CheckResult{
			Status:  "healthy",
			Message: "Rotator connection OK",
		}
	} else {
		health.Status = "unhealthy"
		health.Checks["rotator"] = CheckResult{
			Status:  "unhealthy",
			Message: "Rotator connection is not open",
		}
	}

	health.Checks["rotator_stats"] = CheckResult{
		Status: "healthy",
		Data: map[string]interface{}{
			"connection_type": status.ConnectionType,
			"address":         status.Address,
			"framing":         status.Framing,
			"read_timeout":    status.ReadTimeout,
			"bytes_written":   status.Stats.BytesWritten,
			"bytes_read":      status.Stats.BytesRead,
			"operations":      status.Stats.OperationCount,
			"errors":          status.Stats.ErrorCount,
			"idle_reads":      status.Stats.IdleReads,
			"last_activity":   status.Stats.LastActivity,
		},
	}

	if h.websocket != nil {
		health.Checks["websocket"] = CheckResult{
			Status: "healthy",
			Data: map[string]interface{}{
				"clients": h.websocket.GetConnectionStats().TotalConnections,
			},
		}
	}

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		h.logger.Warn("Health check failed", zap.String("address", status.Address))
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// ReadinessCheck for Kubernetes readiness probe
// @Summary Readiness check
// @Description Check if the rotator connection is open
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if !h.rotatorService.Status().Connected {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "rotator not connected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck for Kubernetes liveness probe
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
