// Package handler holds the HTTP handlers. Each handler struct wraps the
// services it needs plus the shared page writer.
package handler

import (
	"net/http"
	"time"

	"github.com/dashmed/dashmed/internal/constants"
	"github.com/dashmed/dashmed/internal/csrf"
	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/dashmed/dashmed/internal/session"
	"github.com/dashmed/dashmed/internal/view"
	"github.com/dashmed/dashmed/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageWriter renders pages with the ambient session data (identity, CSRF
// token) filled in.
type PageWriter struct {
	views   *view.Renderer
	csrfTTL time.Duration
}

func NewPageWriter(views *view.Renderer, csrfTTL time.Duration) *PageWriter {
	return &PageWriter{views: views, csrfTTL: csrfTTL}
}

func (w *PageWriter) Page(c *gin.Context, status int, page, title string, data view.Data) {
	sess := session.FromContext(c)
	data.Title = title
	data.LoggedIn = sess.IsAuthenticated()
	if name, ok := sess.Get(session.KeyDoctorName); ok {
		data.DoctorName = name
	}
	if v, ok := sess.Get(session.KeyEmailVerified); ok && v == "0" {
		data.EmailPending = true
	}
	if data.CSRFToken == "" {
		tok, err := csrf.Token(sess)
		if err != nil {
			logger.GetLogger().Error("Failed to issue CSRF token", zap.Error(err))
		} else {
			data.CSRFToken = tok
		}
	}
	w.views.HTML(c, status, page, data)
}

// GuardCSRF consumes and checks the form's CSRF token. On failure it
// renders the 403 page and aborts the request.
func (w *PageWriter) GuardCSRF(c *gin.Context) bool {
	sess := session.FromContext(c)
	if !csrf.Validate(sess, c.PostForm(constants.ParamCSRFToken), w.csrfTTL) {
		w.ErrorPage(c, apperrors.ToHTTPStatus(apperrors.ErrInvalidCSRF), constants.MsgCSRFInvalid)
		c.Abort()
		return false
	}
	return true
}

func (w *PageWriter) ErrorPage(c *gin.Context, status int, message string) {
	w.Page(c, status, "error", "Erreur", view.Data{Page: gin.H{"Message": message}})
}

func (w *PageWriter) NotFound(c *gin.Context) {
	w.Page(c, http.StatusNotFound, "error404", "Page introuvable", view.Data{})
}
