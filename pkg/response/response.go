package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
)

// ErrorEnvelope is the common failure contract. Success payloads carry their
// own `success` flag so each endpoint keeps its documented shape.
type ErrorEnvelope struct {
	Success bool             `json:"success"`
	Error   *appErrors.Error `json:"error"`
}

// JSON sends a success payload verbatim.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, payload)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, ErrorEnvelope{Error: appErr})
}
