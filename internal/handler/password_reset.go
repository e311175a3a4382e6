package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dashmed/dashmed/internal/constants"
	"github.com/dashmed/dashmed/internal/dto"
	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/dashmed/dashmed/internal/service"
	"github.com/dashmed/dashmed/internal/session"
	"github.com/dashmed/dashmed/internal/view"
	"github.com/dashmed/dashmed/pkg/validation"
	"github.com/gin-gonic/gin"
)

// Session keys for the per-session request throttle on the forgot-password
// form.
const (
	keyResetAttempts    = "pwreset_attempts"
	keyResetWindowStart = "pwreset_window_start"
)

type PasswordResetHandler struct {
	*PageWriter
	resets      *service.PasswordResetService
	maxAttempts int
	window      time.Duration
}

func NewPasswordResetHandler(pw *PageWriter, resets *service.PasswordResetService, maxAttempts int, window time.Duration) *PasswordResetHandler {
	return &PasswordResetHandler{
		PageWriter:  pw,
		resets:      resets,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (h *PasswordResetHandler) ShowForgotten(c *gin.Context) {
	h.Page(c, http.StatusOK, "forgotten_password", "Mot de passe oublié", view.Data{})
}

// Forgotten handles the reset request. The response body is identical for
// known and unknown addresses; only the throttle message differs, and it
// depends on the session, not on the account.
func (h *PasswordResetHandler) Forgotten(c *gin.Context) {
	if !h.GuardCSRF(c) {
		return
	}

	var form dto.ForgotPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		h.Page(c, http.StatusBadRequest, "forgotten_password", "Mot de passe oublié", view.Data{
			Error: validation.MessageFor(err),
		})
		return
	}

	sess := session.FromContext(c)
	if h.throttled(sess) {
		h.Page(c, http.StatusTooManyRequests, "forgotten_password", "Mot de passe oublié", view.Data{
			Success: constants.MsgResetThrottled,
		})
		return
	}

	if err := h.resets.Request(c.Request.Context(), form.Email); err != nil {
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
		return
	}

	h.Page(c, http.StatusOK, "forgotten_password", "Mot de passe oublié", view.Data{
		Success: constants.MsgResetNeutral,
	})
}

// throttled counts attempts in the session over a sliding window and
// records the current one.
func (h *PasswordResetHandler) throttled(sess *session.Session) bool {
	now := time.Now()

	startRaw, _ := sess.Get(keyResetWindowStart)
	start, err := strconv.ParseInt(startRaw, 10, 64)
	if err != nil || now.Sub(time.Unix(start, 0)) > h.window {
		sess.Set(keyResetWindowStart, strconv.FormatInt(now.Unix(), 10))
		sess.Set(keyResetAttempts, "1")
		return false
	}

	attemptsRaw, _ := sess.Get(keyResetAttempts)
	attempts, _ := strconv.Atoi(attemptsRaw)
	if attempts >= h.maxAttempts {
		return true
	}
	sess.Set(keyResetAttempts, strconv.Itoa(attempts+1))
	return false
}

// ShowReset renders the new-password form, but only when the link is
// still live; a dead link gets the generic invalid-link page.
func (h *PasswordResetHandler) ShowReset(c *gin.Context) {
	email := c.Query(constants.ParamEmail)
	rawToken := c.Query(constants.ParamToken)
	if email == "" || rawToken == "" {
		h.ErrorPage(c, http.StatusBadRequest, constants.MsgResetLinkMissing)
		return
	}

	ok, err := h.resets.Validate(c.Request.Context(), email, rawToken)
	if err != nil {
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
		return
	}
	if !ok {
		h.ErrorPage(c, http.StatusBadRequest, constants.MsgResetLinkInvalid)
		return
	}

	h.Page(c, http.StatusOK, "reset_password", "Nouveau mot de passe", view.Data{
		Page: gin.H{"Email": email, "Token": rawToken},
	})
}

func (h *PasswordResetHandler) Reset(c *gin.Context) {
	if !h.GuardCSRF(c) {
		return
	}

	var form dto.ResetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		h.ErrorPage(c, http.StatusBadRequest, validation.MessageFor(err))
		return
	}

	err := h.resets.Reset(c.Request.Context(), form)
	switch {
	case err == nil:
		h.Page(c, http.StatusOK, "login", "Connexion", view.Data{
			Success: constants.MsgPasswordUpdated,
			Page:    gin.H{"Email": form.Email},
		})
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		h.renderResetForm(c, constants.MsgPasswordsDiffer, form)
	case errors.Is(err, apperrors.ErrWeakPassword):
		h.renderResetForm(c, constants.MsgWeakPassword, form)
	case errors.Is(err, apperrors.ErrInvalidToken):
		h.ErrorPage(c, http.StatusBadRequest, constants.MsgResetLinkInvalid)
	default:
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
	}
}

func (h *PasswordResetHandler) renderResetForm(c *gin.Context, errMsg string, form dto.ResetPasswordForm) {
	h.Page(c, http.StatusBadRequest, "reset_password", "Nouveau mot de passe", view.Data{
		Error: errMsg,
		Page:  gin.H{"Email": form.Email, "Token": form.Token},
	})
}
