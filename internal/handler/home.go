package handler

import (
	"net/http"

	"github.com/dashmed/dashmed/internal/constants"
	"github.com/dashmed/dashmed/internal/session"
	"github.com/gin-gonic/gin"
)

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home routes the bare domain: logged-in doctors land on their patient
// list, everyone else on the login form.
func (h *HomeHandler) Home(c *gin.Context) {
	if session.FromContext(c).IsAuthenticated() {
		c.Redirect(http.StatusFound, constants.PathAccueil)
		return
	}
	c.Redirect(http.StatusFound, constants.PathLogin)
}
