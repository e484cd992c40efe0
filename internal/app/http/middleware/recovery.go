package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pagesync/internal/app/dto"
)

// ZapRecovery turns handler panics into a logged 500 with the standard error body.
func ZapRecovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Error("panic recovered",
				zap.Any("panic", rec),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Stack("stack"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error: dto.Error{
					Code:    "INTERNAL_ERROR",
					Message: "internal server error",
				},
			})
		}()

		c.Next()
	}
}
