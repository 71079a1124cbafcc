package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
	"github.com/noah-isme/library-portal-api/pkg/response"
)

// ServiceKeyHeader carries the shared key for librarian console routes.
const ServiceKeyHeader = "X-Service-Key"

// ServiceKey gates routes behind a shared key compared in constant time.
// An empty configured key disables the routes entirely rather than
// leaving them open.
func ServiceKey(configured string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if configured == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "console access is not configured"))
			c.Abort()
			return
		}
		supplied := c.GetHeader(ServiceKeyHeader)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(configured)) != 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid service key"))
			c.Abort()
			return
		}
		c.Next()
	}
}
