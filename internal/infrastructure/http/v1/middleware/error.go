package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/apperror"
	"stockledger/pkg/logger"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders the last error recorded on the gin context.
// Internal causes are logged, never returned to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if appErr, ok := apperror.AsAppError(err); ok {
			body := ErrorBody{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
			if appErr.Code == apperror.CodeInternal {
				logger.Error(c.Request.Context(), "request failed",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
				body.Details = map[string]any{"request_id": c.GetString("request_id")}
			}
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		logger.Error(c.Request.Context(), "unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorBody{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
			Details: map[string]any{"request_id": c.GetString("request_id")},
		})
	}
}
