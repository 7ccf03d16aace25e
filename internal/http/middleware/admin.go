package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/responsewatch/backend/internal/http/httperr"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKey guards debug and destructive routes. An empty key leaves them open.
func AdminKey(required string) gin.HandlerFunc {
	want := []byte(required)
	return func(c *gin.Context) {
		if len(want) > 0 && subtle.ConstantTimeCompare([]byte(c.GetHeader(AdminKeyHeader)), want) != 1 {
			httperr.Abort(c, http.StatusUnauthorized, httperr.CodeUnauthorized, "Invalid admin key",
				gin.H{"header": AdminKeyHeader})
			return
		}
		c.Next()
	}
}
