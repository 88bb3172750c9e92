package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	domainErrors "github.com/stableroute/stableroute_service/internal/domain/errors"
)

// Error codes as constants for consistent error responses across handlers
const (
	// Authentication & Authorization errors
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInvalidToken  = "INVALID_TOKEN"
	ErrCodeAdminRequired = "ADMIN_PRIVILEGES_REQUIRED"

	// Validation errors
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeInvalidID       = "INVALID_ID"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"

	// Operation errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeOperationFailed    = "OPERATION_FAILED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Error messages as constants for consistency
const (
	MsgInvalidRequest     = "Invalid request payload"
	MsgUnauthorized       = "Authentication required"
	MsgForbidden          = "Insufficient permissions"
	MsgInternalError      = "Internal server error"
	MsgServiceUnavailable = "Service temporarily unavailable"
)

// SendBadRequest sends a 400 Bad Request error
func SendBadRequest(c *gin.Context, code, message string, details ...map[string]interface{}) {
	var det map[string]interface{}
	if len(details) > 0 {
		det = details[0]
	}
	c.JSON(http.StatusBadRequest, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: det,
	})
}

// SendUnauthorized sends a 401 Unauthorized error
func SendUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, entities.ErrorResponse{
		Code:    ErrCodeUnauthorized,
		Message: message,
	})
}

// SendNotFound sends a 404 Not Found error
func SendNotFound(c *gin.Context, code, message string) {
	c.JSON(http.StatusNotFound, entities.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// SendConflict sends a 409 Conflict error
func SendConflict(c *gin.Context, code, message string) {
	c.JSON(http.StatusConflict, entities.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// SendInternalError sends a 500 Internal Server Error
func SendInternalError(c *gin.Context, code, message string) {
	c.JSON(http.StatusInternalServerError, entities.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// SendServiceUnavailable sends a 503 Service Unavailable error
func SendServiceUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, entities.ErrorResponse{
		Code:    ErrCodeServiceUnavailable,
		Message: message,
	})
}

// SendSuccess sends a 200 OK response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendCreated sends a 201 Created response with data
func SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendNoContent sends a 204 No Content response
func SendNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SendDomainError maps a domain error onto the right HTTP status. Unknown
// errors collapse to a 500 without leaking internals.
func SendDomainError(c *gin.Context, err error) {
	code := domainErrors.GetErrorCode(err)
	body := entities.ErrorResponse{
		Code:    code,
		Message: err.Error(),
		Details: domainErrors.GetErrorDetails(err),
	}

	switch {
	case domainErrors.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, body)
	case domainErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, body)
	case domainErrors.IsAlreadyExists(err), domainErrors.IsConflict(err):
		c.JSON(http.StatusConflict, body)
	case domainErrors.IsExpired(err):
		c.JSON(http.StatusGone, body)
	case domainErrors.IsPaused(err), domainErrors.IsServiceUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, body)
	case domainErrors.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, body)
	case domainErrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, body)
	default:
		c.JSON(http.StatusInternalServerError, entities.ErrorResponse{
			Code:    ErrCodeInternalError,
			Message: MsgInternalError,
		})
	}
}
