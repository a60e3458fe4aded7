package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jamiljuma2/assignhub-backend/internal/logger"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно. Статус и сообщение
// для клиента берутся из AppError, всё остальное маскируется как
// внутренняя ошибка.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		statusCode := apperror.Status(err)
		message := apperror.UserMessage(err)

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

		c.JSON(statusCode, gin.H{"error": message})
	}
}
