package middlewares

import (
	"bytes"
	"io"

	"github.com/icynarco112-ux/calories-tracker/models"
	"github.com/icynarco112-ux/calories-tracker/services"

	"github.com/gin-gonic/gin"
)

// FailureLog records every request that ends in an error status to the
// diagnostic log, with the raw request body and the attempted identity.
// Recording is best-effort and never changes the response.
func FailureLog(ops *services.OpLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw []byte
		if c.Request.Body != nil {
			raw, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		}
		w := &failureWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if c.Writer.Status() < 400 {
			return
		}
		code := c.Query("code")
		if v, ok := c.Get("user"); ok {
			if user, ok := v.(*models.User); ok {
				code = user.Code
			}
		}
		op := c.Request.Method + " " + c.FullPath()
		ops.Record(c.Request.Context(), op, w.body.String(), code, string(raw))
	}
}

// failureWriter keeps a copy of the response body for the diagnostic entry.
type failureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *failureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
