package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/library-portal-api/internal/models"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
	"github.com/noah-isme/library-portal-api/pkg/response"
)

// ContextUserKey is the gin context key storing verified token claims.
const ContextUserKey = "currentUser"

type tokenVerifier interface {
	VerifyToken(tokenString string) (*models.TokenClaims, error)
}

// Auth protects routes by requiring a valid bearer token.
func Auth(identity tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromHeader(c, identity)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// RequireRole layers a role check on top of Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Role != role {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the claims set by Auth, or nil.
func CurrentUser(c *gin.Context) *models.TokenClaims {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

func claimsFromHeader(c *gin.Context, identity tokenVerifier) (*models.TokenClaims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, appErrors.ErrUnauthorized
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}

	return identity.VerifyToken(parts[1])
}
