package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xyz-asif/reportabaches/pkg/errors"
)

// ErrorResponse represents a standard error payload returned by the API
type ErrorResponse struct {
	Error string      `json:"error" example:"could not confirm the report"`
	Code  string      `json:"code,omitempty" example:"CONFIRM_FAILED"`
	Data  interface{} `json:"data,omitempty"`
}

// SuccessResponse represents a standard success payload
type SuccessResponse struct {
	Status string      `json:"status" example:"success"`
	Data   interface{} `json:"data"`
}

// ListResponse wraps a list with its size
type ListResponse struct {
	Status string      `json:"status" example:"success"`
	Data   interface{} `json:"data"`
	Total  int         `json:"total" example:"25"`
}

// Success sends a 200 OK response with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Status: "success",
		Data:   data,
	})
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Status: "success",
		Data:   data,
	})
}

// List sends a 200 response for a complete (unpaginated) list
func List(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, ListResponse{
		Status: "success",
		Data:   data,
		Total:  total,
	})
}

// Error sends an error response with custom status code and message
func Error(c *gin.Context, statusCode int, message string, errorCode ...string) {
	code := ""
	if len(errorCode) > 0 {
		code = errorCode[0]
	}

	c.JSON(statusCode, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusBadRequest, message, errorCode...)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnauthorized, message, errorCode...)
}

// Forbidden sends a 403 Forbidden error
func Forbidden(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusForbidden, message, errorCode...)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusNotFound, message, errorCode...)
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusConflict, message, errorCode...)
}

// ConflictWithData sends a 409 carrying the conflicting resources
func ConflictWithData(c *gin.Context, message, errorCode string, data interface{}) {
	c.JSON(http.StatusConflict, ErrorResponse{
		Error: message,
		Code:  errorCode,
		Data:  data,
	})
}

// ValidationError sends a 422 Unprocessable Entity error
func ValidationError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnprocessableEntity, message, errorCode...)
}

// InternalServerError sends a 500 Internal Server Error
func InternalServerError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusInternalServerError, message, errorCode...)
}

// ServiceUnavailable sends a 503 Service Unavailable error
func ServiceUnavailable(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusServiceUnavailable, message, errorCode...)
}

// BindError handles request decode errors
func BindError(c *gin.Context, err error) {
	ValidationError(c, err.Error(), "VALIDATION_FAILED")
}

// FromError maps a domain error onto an HTTP response. Raw cause text is never
// sent; failedCode and the operation message are used for store failures.
func FromError(c *gin.Context, err error, failedCode string) {
	switch {
	case apperrors.Is(err, apperrors.ErrValidation):
		ValidationError(c, err.Error(), "VALIDATION_FAILED")
	case apperrors.Is(err, apperrors.ErrPermissionDenied):
		Forbidden(c, "you are not allowed to perform this action", "PERMISSION_DENIED")
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		Unauthorized(c, "authentication required", "AUTH_REQUIRED")
	case apperrors.Is(err, apperrors.ErrNotFound):
		NotFound(c, "report not found", "REPORT_NOT_FOUND")
	case apperrors.Is(err, apperrors.ErrAlreadyResolved):
		Conflict(c, "the report is already resolved", "ALREADY_RESOLVED")
	case apperrors.Is(err, apperrors.ErrPhotoAttached):
		Conflict(c, "the report already has its photo", "PHOTO_ALREADY_ATTACHED")
	default:
		InternalServerError(c, apperrors.UserMessage(err, "the request could not be completed"), failedCode)
	}
}
