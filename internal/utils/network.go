package utils

import (
	"github.com/gin-gonic/gin"
)

// GetRealIP returns the client IP address used for audit records and login
// throttling.
//
// X-Forwarded-For and X-Real-IP are honoured only when the immediate peer is
// one of the engine's trusted proxies (see gin.Engine.SetTrustedProxies);
// otherwise the TCP remote address is used.
func GetRealIP(c *gin.Context) string {
	return c.ClientIP()
}

// GetUserAgent extracts the User-Agent header from the request
func GetUserAgent(c *gin.Context) string {
	ua := c.Request.UserAgent()
	if ua == "" {
		return "Unknown"
	}
	return ua
}
