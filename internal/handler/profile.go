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

type ProfileHandler struct {
	*PageWriter
	profiles    *service.ProfileService
	sessions    *session.Manager
	forceReauth bool
}

func NewProfileHandler(pw *PageWriter, profiles *service.ProfileService, sessions *session.Manager, forceReauth bool) *ProfileHandler {
	return &ProfileHandler{
		PageWriter:  pw,
		profiles:    profiles,
		sessions:    sessions,
		forceReauth: forceReauth,
	}
}

func (h *ProfileHandler) Profile(c *gin.Context) {
	sess := session.FromContext(c)
	doctor, err := h.profiles.Get(c.Request.Context(), sess.DoctorID())
	if err != nil {
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
		return
	}
	h.Page(c, http.StatusOK, "profile", "Mon profil", view.Data{
		Page: gin.H{"Doctor": doctor},
	})
}

func (h *ProfileHandler) ShowChangePassword(c *gin.Context) {
	h.Page(c, http.StatusOK, "change_password", "Changer mon mot de passe", view.Data{})
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	if !h.GuardCSRF(c) {
		return
	}

	var form dto.ChangePasswordForm
	if err := c.ShouldBind(&form); err != nil {
		h.Page(c, http.StatusBadRequest, "change_password", "Changer mon mot de passe", view.Data{
			Error: validation.MessageFor(err),
		})
		return
	}

	sess := session.FromContext(c)
	err := h.profiles.ChangePassword(c.Request.Context(), sess.DoctorID(), form)
	switch {
	case err == nil:
		if h.forceReauth {
			_ = h.sessions.Logout(c.Request.Context(), c, sess)
			c.Redirect(http.StatusFound, constants.PathLogin)
			return
		}
		h.Page(c, http.StatusOK, "change_password", "Changer mon mot de passe", view.Data{
			Success: constants.MsgPasswordUpdated,
		})
	case errors.Is(err, apperrors.ErrIncorrectPassword):
		h.Page(c, http.StatusUnauthorized, "change_password", "Changer mon mot de passe", view.Data{
			Error: constants.MsgCurrentPwdWrong,
		})
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		h.Page(c, http.StatusBadRequest, "change_password", "Changer mon mot de passe", view.Data{
			Error: constants.MsgPasswordsDiffer,
		})
	case errors.Is(err, apperrors.ErrWeakPassword):
		h.Page(c, http.StatusBadRequest, "change_password", "Changer mon mot de passe", view.Data{
			Error: constants.MsgWeakPassword,
		})
	default:
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
	}
}

func (h *ProfileHandler) ShowChangeMail(c *gin.Context) {
	h.Page(c, http.StatusOK, "change_mail", "Changer mon adresse email", view.Data{})
}

// ChangeMail moves the account to a new address. The account drops back
// to unverified but the session stays open; the session payload is updated
// so the new address shows up immediately.
func (h *ProfileHandler) ChangeMail(c *gin.Context) {
	if !h.GuardCSRF(c) {
		return
	}

	var form dto.ChangeEmailForm
	if err := c.ShouldBind(&form); err != nil {
		h.Page(c, http.StatusBadRequest, "change_mail", "Changer mon adresse email", view.Data{
			Error: validation.MessageFor(err),
		})
		return
	}

	sess := session.FromContext(c)
	err := h.profiles.ChangeEmail(c.Request.Context(), sess.DoctorID(), form)
	switch {
	case err == nil:
		h.recordNewEmail(sess, form.NewEmail)
		h.Page(c, http.StatusOK, "change_mail", "Changer mon adresse email", view.Data{
			Success: constants.MsgEmailUpdated,
		})
	case errors.Is(err, apperrors.ErrMailFailed):
		h.recordNewEmail(sess, form.NewEmail)
		h.Page(c, http.StatusOK, "change_mail", "Changer mon adresse email", view.Data{
			Error: constants.MsgEmailUpdateNoMail,
		})
	case errors.Is(err, apperrors.ErrEmailMismatch):
		h.renderChangeMail(c, http.StatusBadRequest, constants.MsgEmailsDiffer)
	case errors.Is(err, apperrors.ErrSameEmail):
		h.renderChangeMail(c, http.StatusBadRequest, constants.MsgSameEmail)
	case errors.Is(err, apperrors.ErrIncorrectPassword):
		h.renderChangeMail(c, http.StatusUnauthorized, constants.MsgCurrentPwdWrong)
	case errors.Is(err, apperrors.ErrEmailExists):
		h.renderChangeMail(c, http.StatusConflict, constants.MsgEmailTaken)
	default:
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
	}
}

// recordNewEmail keeps the session authenticated and mirrors the address
// change into the session payload, with the verified flag lowered until
// the new address is confirmed.
func (h *ProfileHandler) recordNewEmail(sess *session.Session, email string) {
	sess.Set(session.KeyDoctorEmail, email)
	sess.Set(session.KeyEmailVerified, "0")
}

func (h *ProfileHandler) renderChangeMail(c *gin.Context, status int, errMsg string) {
	h.Page(c, status, "change_mail", "Changer mon adresse email", view.Data{Error: errMsg})
}
