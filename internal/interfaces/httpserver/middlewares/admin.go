package middlewares

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/responses"
	"github.com/jsachs1300/wayfinder-api/internal/utils/platformerrors"
)

// RequireAdmin guards the /admin surface with the configured API key.
// The key may arrive as X-Admin-Api-Key or as X-Session-Token, which
// the dashboard uses after exchanging its login secret.
func RequireAdmin(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		presented := c.GetHeader("X-Admin-Api-Key")
		if presented == "" {
			presented = c.GetHeader("X-Session-Token")
		}

		if presented == "" {
			responses.HandleError(c, platformerrors.NewError(
				ctx,
				platformerrors.LayerHandler,
				platformerrors.ErrorTypeUnauthorized,
				"admin credentials required",
				nil,
			), "admin credentials required")
			return
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
			responses.HandleError(c, platformerrors.NewError(
				ctx,
				platformerrors.LayerHandler,
				platformerrors.ErrorTypeForbidden,
				"invalid admin credentials",
				nil,
			), "invalid admin credentials")
			return
		}

		c.Next()
	}
}
