package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/recruitportal/internal/identity"
	"github.com/yoockh/recruitportal/internal/utils"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

const (
	CtxUserID      = "user_id"
	CtxAccessToken = "access_token"
	CtxPrincipal   = "principal"
)

// BearerToken reads the Authorization header, falling back to the
// access_token query parameter for websocket upgrades.
func BearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c.IsWebsocket() {
		return strings.TrimSpace(c.Query("access_token"))
	}
	return ""
}

func JWTAuth(cfg identity.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "SUPABASE_JWT_SECRET is not set",
			})
			return
		}

		raw := BearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "missing bearer token",
			})
			return
		}

		claims, err := identity.ParseToken(cfg, raw)
		if err != nil {
			msg := "invalid token"
			switch err {
			case identity.ErrTokenIssuer:
				msg = "invalid token issuer"
			case identity.ErrTokenAudience:
				msg = "invalid token audience"
			case identity.ErrTokenSubject:
				msg = "missing subject"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: msg,
			})
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxAccessToken, raw)
		c.Next()
	}
}
