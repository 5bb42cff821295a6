package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"venture-match-backend/internal/common/errors"
	"venture-match-backend/internal/common/logger"
)

// RequestID attaches an id to every request for correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorHandler recovers panics and renders any AppError pushed onto the gin
// error list as a JSON envelope with the matching HTTP status.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error().
					Str("request_id", getRequestID(c)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("stack", string(debug.Stack())).
					Msgf("Panic recovered: %v", recovered)

				appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
					WithDetail("panic", fmt.Sprintf("%v", recovered))
				sendErrorResponse(c, appErr)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := errors.AsAppError(err)
		if !ok {
			appErr = errors.Wrap(err, errors.ErrCodeInternal, "Unexpected error")
		}
		sendErrorResponse(c, appErr)
	}
}

// ErrorResponse is the JSON envelope for failed requests.
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError) {
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	logError(c, appErr)

	c.JSON(statusCodeFor(appErr), ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
	})
}

func statusCodeFor(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest, errors.ErrCodeSelfRequestNotAllowed:
		return http.StatusBadRequest
	case errors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case errors.ErrCodeNotAuthorized:
		return http.StatusForbidden
	case errors.ErrCodeUserNotFound, errors.ErrCodeRequestNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRequestAlreadyExists, errors.ErrCodeRoleAlreadyAssigned, errors.ErrCodeInvalidTransition:
		return http.StatusConflict
	case errors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logError(c *gin.Context, appErr *errors.AppError) {
	event := logger.Info()
	switch {
	case appErr.IsInternal():
		event = logger.Error()
	case appErr.IsUnauthorized():
		event = logger.Warn()
	}

	event.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Err(appErr.Cause).
		Msg(appErr.Message)
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}
