// internal/utils/response.go
package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request ID
const RequestIDKey = "request_id"

// Error codes carried in APIError.Code
const (
	CodeBadRequest            = "BAD_REQUEST"
	CodeInvalidDirection      = "INVALID_DIRECTION"
	CodeNotFound              = "NOT_FOUND"
	CodeInternal              = "INTERNAL_SERVER_ERROR"
	CodeDeviceError           = "DEVICE_ERROR"
	CodeInvalidDeviceResponse = "INVALID_DEVICE_RESPONSE"
	CodeMissingDeviceValue    = "MISSING_DEVICE_VALUE"
	CodeInvalidDeviceValue    = "INVALID_DEVICE_VALUE"
	CodeDeviceTimeout         = "DEVICE_TIMEOUT"
	CodeRotatorNotConnected   = "ROTATOR_NOT_CONNECTED"
	CodeRotatorIO             = "ROTATOR_IO_ERROR"
	CodeUnknown               = "UNKNOWN_ERROR"
)

// APIResponse is the envelope of every REST response
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError describes a failed request. DeviceMessage is the rotator's own
// ERR text, verbatim, when the device refused the command.
type APIError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	Details       string `json:"details,omitempty"`
	DeviceMessage string `json:"device_message,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: GetRequestID(c),
	})
}

// ErrorResponse sends an error response with the code implied by statusCode
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	SendError(c, statusCode, &APIError{Code: codeForStatus(statusCode), Message: message}, err)
}

// SendError sends apiError; err, if any, becomes its details
func SendError(c *gin.Context, statusCode int, apiError *APIError, err error) {
	if err != nil && apiError.Details == "" {
		apiError.Details = err.Error()
	}

	c.JSON(statusCode, APIResponse{
		Success:   false,
		Message:   apiError.Message,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: GetRequestID(c),
	})
}

// GetRequestID extracts request ID from context
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// codeForStatus is the fallback when the caller has no finer classification
func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusUnprocessableEntity:
		return CodeDeviceError
	case http.StatusInternalServerError:
		return CodeInternal
	case http.StatusBadGateway:
		return CodeInvalidDeviceResponse
	case http.StatusServiceUnavailable:
		return CodeRotatorIO
	case http.StatusGatewayTimeout:
		return CodeDeviceTimeout
	default:
		return CodeUnknown
	}
}
