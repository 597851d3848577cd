package middleware

import (
	"agency-cms/helper"
	"agency-cms/models"
	"agency-cms/services"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

// Authenticate resolves the session from the signed cookie or the bearer
// header and stores the user on the context.
func Authenticate(authService services.AuthService, cookies *helper.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookies.Get(c, helper.SessionCookie)

		user, err := authService.Resolve(c.Request.Context(), token, c.GetHeader("Authorization"))
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Error(models.ErrUnauthenticated)
			c.Abort()
			return
		}

		if !user.HasRole(roles...) {
			c.Error(models.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission rejects users whose permission set lacks p. A user with
// no permission record has none.
func RequirePermission(p models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Error(models.ErrUnauthenticated)
			c.Abort()
			return
		}

		if !user.Can(p) {
			c.Error(models.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
