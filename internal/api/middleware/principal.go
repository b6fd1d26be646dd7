package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/utils"
)

// PrincipalLoader resolves the staff roles behind a verified user id.
type PrincipalLoader interface {
	Principal(ctx context.Context, userID string) (access.Principal, error)
}

// LoadPrincipal must run after JWTAuth.
func LoadPrincipal(loader PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		p, err := loader.Principal(c.Request.Context(), userID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(CtxPrincipal, p)
		c.Next()
	}
}

// RequireAction rejects requests whose principal may not perform a.
func RequireAction(a access.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		if err := access.Authorize(p, a, "RequireAction"); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (access.Principal, bool) {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok
}

func abortWithError(c *gin.Context, err error) {
	msg := "forbidden"
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	c.AbortWithStatusJSON(utils.HTTPStatus(err), apiError{Code: utils.CodeOf(err), Message: msg})
}
