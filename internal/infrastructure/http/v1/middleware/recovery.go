// Package middleware provides the gin middleware of the HTTP API.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/pkg/logger"
)

// Recovery turns panics into INTERNAL_ERROR responses and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
				)
				_ = c.Error(apperror.NewInternal(fmt.Errorf("panic: %v", err)))
				c.Abort()
			}
		}()
		c.Next()
	}
}
