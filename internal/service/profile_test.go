package service

import (
	"context"
	"testing"
	"time"

	"github.com/dashmed/dashmed/internal/dto"
	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newProfileFixture() (*ProfileService, *fakeDoctorStore, *fakeMailer) {
	doctors := newFakeDoctorStore()
	m := &fakeMailer{}
	return NewProfileService(doctors, m, 24*time.Hour), doctors, m
}

func TestChangePassword(t *testing.T) {
	svc, doctors, _ := newProfileFixture()
	seeded := seedDoctor(t, doctors, "anne@example.org", true)

	form := dto.ChangePasswordForm{
		CurrentPassword: strongPassword,
		NewPassword:     "Fresh#Password99x",
		ConfirmPassword: "Fresh#Password99x",
	}
	require.NoError(t, svc.ChangePassword(context.Background(), seeded.ID, form))

	stored, err := doctors.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Fresh#Password99x")))
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	svc, doctors, _ := newProfileFixture()
	seeded := seedDoctor(t, doctors, "anne@example.org", true)

	form := dto.ChangePasswordForm{
		CurrentPassword: "NotTheRightOne1!x",
		NewPassword:     "Fresh#Password99x",
		ConfirmPassword: "Fresh#Password99x",
	}
	err := svc.ChangePassword(context.Background(), seeded.ID, form)
	assert.ErrorIs(t, err, apperrors.ErrIncorrectPassword)
}

func TestChangePasswordEnforcesPolicy(t *testing.T) {
	svc, doctors, _ := newProfileFixture()
	seeded := seedDoctor(t, doctors, "anne@example.org", true)

	form := dto.ChangePasswordForm{
		CurrentPassword: strongPassword,
		NewPassword:     "tooweak",
		ConfirmPassword: "tooweak",
	}
	assert.ErrorIs(t, svc.ChangePassword(context.Background(), seeded.ID, form), apperrors.ErrWeakPassword)

	form.NewPassword = "Fresh#Password99x"
	form.ConfirmPassword = "Other#Password99x"
	assert.ErrorIs(t, svc.ChangePassword(context.Background(), seeded.ID, form), apperrors.ErrPasswordMismatch)
}

func TestChangeEmailMovesAccountBackToUnverified(t *testing.T) {
	svc, doctors, m := newProfileFixture()
	seeded := seedDoctor(t, doctors, "anne@example.org", true)

	form := dto.ChangeEmailForm{
		NewEmail:     "anne.new@example.org",
		ConfirmEmail: "anne.new@example.org",
		Password:     strongPassword,
	}
	require.NoError(t, svc.ChangeEmail(context.Background(), seeded.ID, form))

	stored, err := doctors.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "anne.new@example.org", stored.Email)
	assert.False(t, stored.EmailVerified)
	assert.Regexp(t, hexToken, stored.VerificationToken)

	// Both the old and the new address are notified, plus the activation
	// mail to the new one.
	notices := m.sentTo("email_change")
	require.Len(t, notices, 2)
	assert.Equal(t, "anne@example.org", notices[0].to)
	assert.Equal(t, "anne.new@example.org", notices[1].to)

	verifs := m.sentTo("verification")
	require.Len(t, verifs, 1)
	assert.Equal(t, "anne.new@example.org", verifs[0].to)
}

func TestChangeEmailValidations(t *testing.T) {
	svc, doctors, _ := newProfileFixture()
	seeded := seedDoctor(t, doctors, "anne@example.org", true)
	seedDoctor(t, doctors, "taken@example.org", true)

	cases := []struct {
		name string
		form dto.ChangeEmailForm
		want error
	}{
		{
			name: "mismatched confirmation",
			form: dto.ChangeEmailForm{NewEmail: "a@example.org", ConfirmEmail: "b@example.org", Password: strongPassword},
			want: apperrors.ErrEmailMismatch,
		},
		{
			name: "same as current",
			form: dto.ChangeEmailForm{NewEmail: "Anne@Example.org", ConfirmEmail: "Anne@Example.org", Password: strongPassword},
			want: apperrors.ErrSameEmail,
		},
		{
			name: "wrong password",
			form: dto.ChangeEmailForm{NewEmail: "a@example.org", ConfirmEmail: "a@example.org", Password: "WrongPassword1!x"},
			want: apperrors.ErrIncorrectPassword,
		},
		{
			name: "address already taken",
			form: dto.ChangeEmailForm{NewEmail: "taken@example.org", ConfirmEmail: "taken@example.org", Password: strongPassword},
			want: apperrors.ErrEmailExists,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ChangeEmail(context.Background(), seeded.ID, tc.form)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
