package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/academic-console/pkg/errors"
	"github.com/noah-isme/academic-console/pkg/response"
)

// RequireSession sends unauthenticated browsers back to the login screen.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		shell := ShellFromContext(c)
		if shell == nil {
			abortWithError(c, appErrors.ErrUnauthorized)
			return
		}
		if !shell.Session().IsAuthenticated() {
			if wantsJSON(c) {
				abortWithError(c, appErrors.ErrUnauthorized)
				return
			}
			response.Redirect(c, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin refuses the admin controls to non-admin roles. The backend
// still authorises every mutation on its own.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		shell := ShellFromContext(c)
		if shell == nil || !shell.Session().IsAdmin() {
			abortWithError(c, appErrors.Clone(appErrors.ErrForbidden, "admin role required"))
			return
		}
		c.Next()
	}
}
