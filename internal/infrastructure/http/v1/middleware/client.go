package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "idforge/internal/core/context"
)

// HeaderClientID names the calling system. It is informational and only used for logs.
const HeaderClientID = "X-Client-ID"

// ClientContext adds the caller identity to the request context.
// Must run after Trace so the client id lands in the same log lines as the trace id.
func ClientContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := &appctx.ClientContext{
			ClientID:   c.GetHeader(HeaderClientID),
			RemoteAddr: c.ClientIP(),
		}
		c.Request = c.Request.WithContext(appctx.WithClient(c.Request.Context(), client))
		c.Set("client_id", client.ClientID)
		c.Next()
	}
}
