package middleware

import (
	"net/http"

	"agency-cms/helper"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error recorded with c.Error as the standard
// envelope. Handlers never write error responses themselves.
func ErrorHandler(h *helper.HTTPHelper, log *zap.Logger, exposeInternal bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		code, _, _ := h.GetStatusCode(err)
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err))
		}

		if c.Writer.Written() {
			return
		}
		h.SendError(c, err, exposeInternal)
	}
}
