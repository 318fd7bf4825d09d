// internal/handler/rotator_handler.go
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rotator-service/internal/model"
	"rotator-service/internal/service"
	"rotator-service/internal/utils"
	"rotator-service/pkg/rotator"
)

// RotatorHandler handles rotator HTTP requests
type RotatorHandler struct {
	rotatorService *service.RotatorService
	requestTimeout time.Duration
	logger         *utils.ServiceLogger
}

// NewRotatorHandler creates a new rotator handler. requestTimeout bounds
// the wait for the device lock; zero means the request context alone.
func NewRotatorHandler(rotatorService *service.RotatorService, requestTimeout time.Duration, logger *zap.Logger) *RotatorHandler {
	return &RotatorHandler{
		rotatorService: rotatorService,
		requestTimeout: requestTimeout,
		logger:         utils.NewServiceLogger(logger, "rotator-handler"),
	}
}

// RegisterRoutes registers rotator routes
func (h *RotatorHandler) RegisterRoutes(router *gin.RouterGroup) {
	rotatorRoutes := router.Group("/rotator")
	{
		rotatorRoutes.GET("/position", h.GetPosition)
		rotatorRoutes.PUT("/position/vertical", h.SetPositionVertical)
		rotatorRoutes.PUT("/position/horizontal", h.SetPositionHorizontal)
		rotatorRoutes.POST("/calibrate/vertical", h.CalibrateVertical)
		rotatorRoutes.POST("/calibrate/horizontal", h.CalibrateHorizontal)
		rotatorRoutes.GET("/calibrated", h.GetCalibrated)
		rotatorRoutes.POST("/move", h.Move)
		rotatorRoutes.POST("/steps/vertical", h.MoveVerticalSteps)
		rotatorRoutes.POST("/steps/horizontal", h.MoveHorizontalSteps)
		rotatorRoutes.GET("/version", h.GetVersion)
		rotatorRoutes.POST("/halt", h.Halt)
	}
}

// GetPosition returns the position of both axes
// @Summary Get position
// @Description Read the current vertical and horizontal position in degrees
// @Tags Rotator
// @Produce json
// @Success 200 {object} utils.APIResponse{data=rotator.Position} "Position retrieved successfully"
// @Failure 502 {object} utils.APIResponse "Invalid device response"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/position [get]
func (h *RotatorHandler) GetPosition(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	position, err := h.rotatorService.GetPosition(ctx)
	if err != nil {
		h.deviceError(c, "Failed to get position", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Position retrieved successfully", position)
}

// SetPositionVertical moves the vertical axis
// @Summary Set vertical position
// @Description Move the vertical axis to an absolute position. Both axes must be calibrated.
// @Tags Rotator
// @Accept json
// @Produce json
// @Param request body model.PositionRequest true "Target position"
// @Success 200 {object} utils.APIResponse "Vertical position set"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 422 {object} utils.APIResponse "Rejected by the device"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/position/vertical [put]
func (h *RotatorHandler) SetPositionVertical(c *gin.Context) {
	var req model.PositionRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.rotatorService.SetPositionVertical(ctx, *req.Degrees); err != nil {
		h.deviceError(c, "Failed to set vertical position", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vertical position set", nil)
}

// SetPositionHorizontal moves the horizontal axis
// @Summary Set horizontal position
// @Description Move the horizontal axis to an absolute position. Both axes must be calibrated.
// @Tags Rotator
// @Accept json
// @Produce json
// @Param request body model.PositionRequest true "Target position"
// @Success 200 {object} utils.APIResponse "Horizontal position set"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 422 {object} utils.APIResponse "Rejected by the device"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/position/horizontal [put]
func (h *RotatorHandler) SetPositionHorizontal(c *gin.Context) {
	var req model.PositionRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.rotatorService.SetPositionHorizontal(ctx, *req.Degrees); err != nil {
		h.deviceError(c, "Failed to set horizontal position", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Horizontal position set", nil)
}

// CalibrateVertical calibrates the vertical axis
// @Summary Calibrate vertical axis
// @Description Home the vertical axis, or with set=true store the current position as the reference
// @Tags Rotator
// @Accept json
// @Produce json
// @Param request body model.CalibrateRequest false "Calibration options"
// @Success 200 {object} utils.APIResponse "Vertical axis calibrated"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/calibrate/vertical [post]
func (h *RotatorHandler) CalibrateVertical(c *gin.Context) {
	var req model.CalibrateRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.rotatorService.CalibrateVertical(ctx, req.Set); err != nil {
		h.deviceError(c, "Failed to calibrate vertical axis", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vertical axis calibrated", nil)
}

// CalibrateHorizontal calibrates the horizontal axis
// @Summary Calibrate horizontal axis
// @Tags Rotator
// @Produce json
// @Success 200 {object} utils.APIResponse "Horizontal axis calibrated"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/calibrate/horizontal [post]
func (h *RotatorHandler) CalibrateHorizontal(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.rotatorService.CalibrateHorizontal(ctx); err != nil {
		h.deviceError(c, "Failed to calibrate horizontal axis", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Horizontal axis calibrated", nil)
}

// GetCalibrated reports whether both axes are calibrated
// @Summary Get calibration state
// @Tags Rotator
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.CalibratedResponse} "Calibration state retrieved successfully"
// @Failure 502 {object} utils.APIResponse "Invalid device response"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/calibrated [get]
func (h *RotatorHandler) GetCalibrated(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	calibrated, err := h.rotatorService.IsCalibrated(ctx)
	if err != nil {
		h.deviceError(c, "Failed to get calibration state", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Calibration state retrieved successfully", model.CalibratedResponse{Calibrated: calibrated})
}

// Move starts or stops continuous movement
// @Summary Move continuously
// @Description Start moving in a direction until stopped, or stop one axis
// @Tags Rotator
// @Accept json
// @Produce json
// @Param request body model.MoveRequest true "Direction: up, down, stop-vertical, left, right or stop-horizontal"
// @Success 200 {object} utils.APIResponse "Movement started"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/move [post]
func (h *RotatorHandler) Move(c *gin.Context) {
	var req model.MoveRequest
	if !h.bind(c, &req) {
		return
	}

	direction, err := rotator.ParseDirection(req.Direction)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, &utils.APIError{Code: utils.CodeInvalidDirection, Message: "Invalid direction"}, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.rotatorService.Move(ctx, direction); err != nil {
		h.deviceError(c, "Failed to move", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Movement started", gin.H{"direction": direction.Name()})
}

// MoveVerticalSteps moves the vertical axis by a number of steps
// @Summary Move vertical axis by steps
// @Tags Rotator
// @Accept json
// @Produce json
// @Param request body model.StepsRequest true "Signed step count"
// @Success 200 {object} utils.APIResponse "Vertical axis moved"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/steps/vertical [post]
func (h *RotatorHandler) MoveVerticalSteps(c *gin.Context) {
	var req model.StepsRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.rotatorService.MoveVerticalSteps(ctx, *req.Steps); err != nil {
		h.deviceError(c, "Failed to move vertical axis", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vertical axis moved", nil)
}

// MoveHorizontalSteps moves the horizontal axis by a number of steps
// @Summary Move horizontal axis by steps
// @Tags Rotator
// @Accept json
// @Produce json
// @Param request body model.StepsRequest true "Signed step count"
// @Success 200 {object} utils.APIResponse "Horizontal axis moved"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/steps/horizontal [post]
func (h *RotatorHandler) MoveHorizontalSteps(c *gin.Context) {
	var req model.StepsRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.rotatorService.MoveHorizontalSteps(ctx, *req.Steps); err != nil {
		h.deviceError(c, "Failed to move horizontal axis", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Horizontal axis moved", nil)
}

// GetVersion returns the firmware version
// @Summary Get firmware version
// @Tags Rotator
// @Produce json
// @Success 200 {object} utils.APIResponse{data=model.VersionResponse} "Version retrieved successfully"
// @Failure 502 {object} utils.APIResponse "Invalid device response"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/version [get]
func (h *RotatorHandler) GetVersion(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	version, err := h.rotatorService.GetVersion(ctx)
	if err != nil {
		h.deviceError(c, "Failed to get version", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Version retrieved successfully", model.VersionResponse{Version: version})
}

// Halt locks both motors
// @Summary Halt
// @Description Stop and lock both motors
// @Tags Rotator
// @Produce json
// @Success 200 {object} utils.APIResponse "Rotator halted"
// @Failure 503 {object} utils.APIResponse "Rotator unavailable"
// @Router /api/v1/rotator/halt [post]
func (h *RotatorHandler) Halt(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.rotatorService.Halt(ctx); err != nil {
		h.deviceError(c, "Failed to halt", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Rotator halted", nil)
}

func (h *RotatorHandler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.requestTimeout)
}

func (h *RotatorHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func (h *RotatorHandler) deviceError(c *gin.Context, message string, err error) {
	statusCode, apiError := classifyError(err)
	apiError.Message = message

	h.logger.Error(message,
		zap.Error(err),
		zap.Int("status_code", statusCode),
		zap.String("error_code", apiError.Code),
		zap.String("request_id", utils.GetRequestID(c)),
	)
	utils.SendError(c, statusCode, apiError, err)
}

// StatusForError maps a rotator error to an HTTP status code
func StatusForError(err error) int {
	statusCode, _ := classifyError(err)
	return statusCode
}

// classifyError maps a rotator error to an HTTP status and error code. A
// device refusal keeps the device's message.
func classifyError(err error) (int, *utils.APIError) {
	var responseErr *rotator.ResponseError
	var parseErr *rotator.ParseError

	switch {
	case errors.As(err, &responseErr):
		return http.StatusUnprocessableEntity, &utils.APIError{Code: utils.CodeDeviceError, DeviceMessage: responseErr.Message}
	case errors.Is(err, rotator.ErrExpectedValue):
		return http.StatusBadGateway, &utils.APIError{Code: utils.CodeMissingDeviceValue}
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, &utils.APIError{Code: utils.CodeInvalidDeviceValue}
	case errors.Is(err, rotator.ErrInvalidResponse):
		return http.StatusBadGateway, &utils.APIError{Code: utils.CodeInvalidDeviceResponse}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, &utils.APIError{Code: utils.CodeDeviceTimeout}
	case errors.Is(err, service.ErrNotConnected):
		return http.StatusServiceUnavailable, &utils.APIError{Code: utils.CodeRotatorNotConnected}
	default:
		return http.StatusServiceUnavailable, &utils.APIError{Code: utils.CodeRotatorIO}
	}
}
