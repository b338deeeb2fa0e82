package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/needanevo/Handyman-app-sub000/internal/logger"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
)

// ErrorHandler maps errors pushed onto the gin context to HTTP responses.
// AppErrors carry their own status and client-safe message; everything else
// is masked as an internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()

		statusCode := http.StatusInternalServerError
		code := string(apperror.ErrCodeInternal)
		message := "internal server error"

		var appErr *apperror.AppError
		if errors.As(err.Err, &appErr) {
			statusCode = appErr.HTTPStatus
			code = string(appErr.Code)
			message = appErr.Message
		} else if msg := err.Error(); msg != "" && !containsInternalKeywords(msg) {
			message = msg
		}

		if logger.Log != nil {
			entry := logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
				"status": statusCode,
			})
			if statusCode >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Warn("request rejected")
			}
		}

		c.JSON(statusCode, gin.H{"error": message, "code": code})
	}
}

// containsInternalKeywords guards against leaking infrastructure details.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	lower := strings.ToLower(s)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
