package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeaders sets the response headers every API route carries.
// Responses hold patient data, so they are never cached.
func SecurityHeaders(hstsMaxAge int) gin.HandlerFunc {
	hsts := ""
	if hstsMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", hstsMaxAge)
	}
	csp := strings.Join([]string{"default-src 'none'", "frame-ancestors 'none'"}, "; ")

	return func(c *gin.Context) {
		if hsts != "" {
			c.Header("Strict-Transport-Security", hsts)
		}
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", csp)
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
