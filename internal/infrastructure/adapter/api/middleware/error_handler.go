package middleware

import (
	"errors"
	"net/http"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// StatusFor maps a domain error to its HTTP status code
func StatusFor(err error) int {
	switch {
	case errs.IsInsufficientFundsError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrInvalidAmount), errors.Is(err, errs.ErrInvalidInterestRate),
		errors.Is(err, errs.ErrEmptyAdjustment):
		return http.StatusUnprocessableEntity
	case errs.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errs.IsNotFoundError(err):
		return http.StatusNotFound
	case errs.IsConflictError(err):
		return http.StatusConflict
	case errors.Is(err, errs.ErrDatabaseConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler recovers from panics and renders the last error a handler attached to the context
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"error":      p,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": c.GetHeader("X-Request-ID"),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Code:    errs.ErrorCode(errs.ErrInternalServer),
					Message: "Internal server error",
				})
			}
		}()

		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		err := last.Err
		status := StatusFor(err)
		fields := errs.LogFields(err)
		fields["path"] = c.Request.URL.Path
		fields["method"] = c.Request.Method
		fields["status"] = status

		message := err.Error()
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", fields)
			message = "Internal server error"
			if status == http.StatusServiceUnavailable {
				message = "Service unavailable"
			}
		} else {
			logger.Warn("Request rejected", fields)
		}

		c.JSON(status, dto.ErrorResponse{
			Code:    errs.ErrorCode(err),
			Message: message,
		})
	}
}
