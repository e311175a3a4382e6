package handler

import (
	"errors"
	"net/http"

	"github.com/dashmed/dashmed/internal/constants"
	"github.com/dashmed/dashmed/internal/dto"
	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/dashmed/dashmed/internal/service"
	"github.com/dashmed/dashmed/internal/session"
	"github.com/dashmed/dashmed/internal/view"
	"github.com/dashmed/dashmed/pkg/validation"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*PageWriter
	auth     *service.AuthService
	sessions *session.Manager
}

func NewAuthHandler(pw *PageWriter, auth *service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{PageWriter: pw, auth: auth, sessions: sessions}
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.Page(c, http.StatusOK, "login", "Connexion", view.Data{})
}

func (h *AuthHandler) Login(c *gin.Context) {
	if !h.GuardCSRF(c) {
		return
	}

	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.Page(c, http.StatusBadRequest, "login", "Connexion", view.Data{
			Error: validation.MessageFor(err),
			Page:  gin.H{"Email": c.PostForm("email")},
		})
		return
	}

	doctor, err := h.auth.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		msg := constants.MsgInvalidCredentials
		if errors.Is(err, apperrors.ErrAccountNotActivated) {
			msg = constants.MsgAccountNotActivated
		} else if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
			return
		}
		h.Page(c, http.StatusUnauthorized, "login", "Connexion", view.Data{
			Error: msg,
			Page:  gin.H{"Email": form.Email},
		})
		return
	}

	sess := session.FromContext(c)
	if err := h.sessions.LoginAs(c.Request.Context(), c, sess, doctor.ID, doctor.DisplayName(), doctor.Email); err != nil {
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
		return
	}

	c.Redirect(http.StatusFound, constants.PathAccueil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess := session.FromContext(c)
	_ = h.sessions.Logout(c.Request.Context(), c, sess)
	c.Redirect(http.StatusFound, constants.PathLogin)
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.Page(c, http.StatusOK, "register", "Inscription", view.Data{})
}

func (h *AuthHandler) Register(c *gin.Context) {
	if !h.GuardCSRF(c) {
		return
	}

	var form dto.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegister(c, http.StatusBadRequest, validation.MessageFor(err), form)
		return
	}

	doctor, err := h.auth.Register(c.Request.Context(), form)
	switch {
	case err == nil:
		h.Page(c, http.StatusOK, "verify_notice", "Vérifiez votre boîte mail", view.Data{
			Success: constants.MsgRegisterSuccess,
			Page:    gin.H{"Email": doctor.Email},
		})
	case errors.Is(err, apperrors.ErrMailFailed):
		// The account exists; the user just has to ask for a resend.
		h.Page(c, http.StatusOK, "verify_notice", "Vérifiez votre boîte mail", view.Data{
			Error: constants.MsgRegisterMailFailure,
			Page:  gin.H{"Email": doctor.Email},
		})
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		h.renderRegister(c, http.StatusBadRequest, constants.MsgPasswordsDiffer, form)
	case errors.Is(err, apperrors.ErrWeakPassword):
		h.renderRegister(c, http.StatusBadRequest, constants.MsgWeakPassword, form)
	case errors.Is(err, apperrors.ErrEmailExists):
		h.renderRegister(c, http.StatusConflict, constants.MsgEmailTaken, form)
	default:
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
	}
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, errMsg string, form dto.RegisterForm) {
	h.Page(c, status, "register", "Inscription", view.Data{
		Error: errMsg,
		Page: gin.H{
			"FirstName": form.FirstName,
			"LastName":  form.LastName,
			"Email":     form.Email,
			"Sex":       form.Sex,
			"Specialty": form.Specialty,
		},
	})
}
