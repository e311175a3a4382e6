package middleware

import (
	"net/http"

	"github.com/dashmed/dashmed/internal/constants"
	"github.com/dashmed/dashmed/internal/session"
	"github.com/gin-gonic/gin"
)

// RequireSession sends anonymous visitors of protected pages back to the
// login form.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c)
		if !sess.IsAuthenticated() {
			c.Redirect(http.StatusFound, constants.PathLogin)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectIfAuthenticated keeps logged-in doctors away from the auth
// exchange pages (login, register); they land on their patient list
// instead.
func RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c)
		if sess.IsAuthenticated() {
			c.Redirect(http.StatusFound, constants.PathAccueil)
			c.Abort()
			return
		}
		c.Next()
	}
}
