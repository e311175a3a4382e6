package handler

import (
	"errors"
	"net/http"

	"github.com/dashmed/dashmed/internal/constants"
	"github.com/dashmed/dashmed/internal/dto"
	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/dashmed/dashmed/internal/service"
	"github.com/dashmed/dashmed/internal/view"
	"github.com/dashmed/dashmed/pkg/validation"
	"github.com/gin-gonic/gin"
)

type VerifyEmailHandler struct {
	*PageWriter
	auth *service.AuthService
}

func NewVerifyEmailHandler(pw *PageWriter, auth *service.AuthService) *VerifyEmailHandler {
	return &VerifyEmailHandler{PageWriter: pw, auth: auth}
}

// Verify consumes the activation link from the email.
func (h *VerifyEmailHandler) Verify(c *gin.Context) {
	rawToken := c.Query(constants.ParamToken)
	if rawToken == "" {
		h.Page(c, http.StatusBadRequest, "verify_email", "Vérification", view.Data{
			Error: constants.MsgVerifyTokenMissing,
			Page:  gin.H{"Verified": false},
		})
		return
	}

	if err := h.auth.VerifyEmail(c.Request.Context(), rawToken); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadyVerified):
			h.Page(c, http.StatusOK, "verify_email", "Vérification", view.Data{
				Success: constants.MsgVerifyAlreadyDone,
				Page:    gin.H{"Verified": true},
			})
		case errors.Is(err, apperrors.ErrInvalidToken):
			h.Page(c, http.StatusBadRequest, "verify_email", "Vérification", view.Data{
				Error: constants.MsgVerifyTokenInvalid,
				Page:  gin.H{"Verified": false},
			})
		default:
			h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
		}
		return
	}

	h.Page(c, http.StatusOK, "verify_email", "Vérification", view.Data{
		Success: constants.MsgVerifySuccess,
		Page:    gin.H{"Verified": true},
	})
}

func (h *VerifyEmailHandler) ShowResend(c *gin.Context) {
	h.Page(c, http.StatusOK, "resend_verification", "Renvoyer l'activation", view.Data{})
}

func (h *VerifyEmailHandler) Resend(c *gin.Context) {
	if !h.GuardCSRF(c) {
		return
	}

	var form dto.ResendVerificationForm
	if err := c.ShouldBind(&form); err != nil {
		h.Page(c, http.StatusBadRequest, "resend_verification", "Renvoyer l'activation", view.Data{
			Error: validation.MessageFor(err),
		})
		return
	}

	err := h.auth.ResendVerification(c.Request.Context(), form.Email)
	switch {
	case err == nil:
		h.Page(c, http.StatusOK, "resend_verification", "Renvoyer l'activation", view.Data{
			Success: constants.MsgResendNeutral,
		})
	case errors.Is(err, apperrors.ErrAlreadyVerified):
		h.Page(c, http.StatusOK, "resend_verification", "Renvoyer l'activation", view.Data{
			Success: constants.MsgResendAlreadyDone,
		})
	case errors.Is(err, apperrors.ErrMailFailed):
		h.Page(c, http.StatusInternalServerError, "resend_verification", "Renvoyer l'activation", view.Data{
			Error: constants.MsgResendMailFailure,
		})
	default:
		h.ErrorPage(c, http.StatusInternalServerError, constants.MsgGenericRetryLater)
	}
}
