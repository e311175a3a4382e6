package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/dashmed/dashmed/internal/dto"
	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/dashmed/dashmed/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Cardiology#2024xy"

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

func registerForm(email string) dto.RegisterForm {
	return dto.RegisterForm{
		FirstName:       "Anne",
		LastName:        "Martin",
		Email:           email,
		Sex:             "F",
		Specialty:       "Cardiologie",
		Password:        strongPassword,
		ConfirmPassword: strongPassword,
	}
}

func newAuthFixture() (*AuthService, *fakeDoctorStore, *fakeMailer) {
	doctors := newFakeDoctorStore()
	m := &fakeMailer{}
	return NewAuthService(doctors, m, 24*time.Hour), doctors, m
}

func seedDoctor(t *testing.T, doctors *fakeDoctorStore, email string, verified bool) *model.Doctor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(strongPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return doctors.add(&model.Doctor{
		FirstName:     "Anne",
		LastName:      "Martin",
		Email:         email,
		Password:      string(hash),
		Active:        true,
		EmailVerified: verified,
	})
}

func TestRegisterCreatesUnverifiedAccountAndMails(t *testing.T) {
	svc, doctors, m := newAuthFixture()

	doctor, err := svc.Register(context.Background(), registerForm("anne@example.org"))
	require.NoError(t, err)
	assert.False(t, doctor.EmailVerified)
	assert.Regexp(t, hexToken, doctor.VerificationToken)
	require.NotNil(t, doctor.VerificationExpires)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *doctor.VerificationExpires, time.Minute)

	// Password is stored hashed, never in clear.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(doctor.Password), []byte(strongPassword)))

	mails := m.sentTo("verification")
	require.Len(t, mails, 1)
	assert.Equal(t, "anne@example.org", mails[0].to)
	assert.Equal(t, doctor.VerificationToken, mails[0].token)

	stored, err := doctors.FindByEmail(context.Background(), "anne@example.org")
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, stored.ID)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()

	form := registerForm("anne@example.org")
	form.Password = "short1!A"
	form.ConfirmPassword = "short1!A"

	_, err := svc.Register(context.Background(), form)
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)
}

func TestRegisterRejectsMismatchedConfirmation(t *testing.T) {
	svc, _, _ := newAuthFixture()

	form := registerForm("anne@example.org")
	form.ConfirmPassword = strongPassword + "x"

	_, err := svc.Register(context.Background(), form)
	assert.ErrorIs(t, err, apperrors.ErrPasswordMismatch)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, doctors, _ := newAuthFixture()
	seedDoctor(t, doctors, "anne@example.org", true)

	_, err := svc.Register(context.Background(), registerForm("Anne@Example.org"))
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)
}

func TestRegisterKeepsAccountWhenMailFails(t *testing.T) {
	svc, doctors, m := newAuthFixture()
	m.fail = true

	_, err := svc.Register(context.Background(), registerForm("anne@example.org"))
	assert.ErrorIs(t, err, apperrors.ErrMailFailed)

	// The account survives so the user can ask for a resend.
	_, err = doctors.FindByEmail(context.Background(), "anne@example.org")
	assert.NoError(t, err)
}

func TestLoginSuccess(t *testing.T) {
	svc, doctors, _ := newAuthFixture()
	seeded := seedDoctor(t, doctors, "anne@example.org", true)

	doctor, err := svc.Login(context.Background(), "anne@example.org", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, doctor.ID)
}

func TestLoginCollapsesUnknownEmailAndWrongPassword(t *testing.T) {
	svc, doctors, _ := newAuthFixture()
	seedDoctor(t, doctors, "anne@example.org", true)

	_, errUnknown := svc.Login(context.Background(), "nobody@example.org", strongPassword)
	_, errWrongPwd := svc.Login(context.Background(), "anne@example.org", "WrongPassword1!x")

	assert.ErrorIs(t, errUnknown, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPwd, apperrors.ErrInvalidCredentials)
}

func TestLoginRejectsUnverifiedAccount(t *testing.T) {
	svc, doctors, _ := newAuthFixture()
	seedDoctor(t, doctors, "anne@example.org", false)

	_, err := svc.Login(context.Background(), "anne@example.org", strongPassword)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotActivated)
}

func TestVerifyEmailIsSingleUse(t *testing.T) {
	svc, _, m := newAuthFixture()

	doctor, err := svc.Register(context.Background(), registerForm("anne@example.org"))
	require.NoError(t, err)
	raw := m.sentTo("verification")[0].token
	_ = doctor

	require.NoError(t, svc.VerifyEmail(context.Background(), raw))
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), raw), apperrors.ErrInvalidToken)
}

func TestVerifyEmailRejectsUnknownAndExpiredTokens(t *testing.T) {
	svc, doctors, _ := newAuthFixture()

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "deadbeef"), apperrors.ErrInvalidToken)
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), ""), apperrors.ErrInvalidToken)

	expired := time.Now().Add(-time.Hour)
	doctors.add(&model.Doctor{
		Email:               "late@example.org",
		VerificationToken:   "ff00ff00",
		VerificationExpires: &expired,
	})
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "ff00ff00"), apperrors.ErrInvalidToken)
}

func TestVerifyEmailOnVerifiedAccountReportsAlreadyDone(t *testing.T) {
	svc, doctors, _ := newAuthFixture()

	// A stale token can linger on an account verified another way; it
	// should not surface as an invalid link.
	expires := time.Now().Add(time.Hour)
	doctors.add(&model.Doctor{
		Email:               "done@example.org",
		EmailVerified:       true,
		VerificationToken:   "cafe0001",
		VerificationExpires: &expires,
	})
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "cafe0001"), apperrors.ErrAlreadyVerified)
}

func TestResendVerificationMintsNewToken(t *testing.T) {
	svc, doctors, m := newAuthFixture()

	_, err := svc.Register(context.Background(), registerForm("anne@example.org"))
	require.NoError(t, err)
	first := m.sentTo("verification")[0].token

	require.NoError(t, svc.ResendVerification(context.Background(), "anne@example.org"))
	mails := m.sentTo("verification")
	require.Len(t, mails, 2)
	assert.NotEqual(t, first, mails[1].token)

	// The first link is dead once a new one is out.
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), first), apperrors.ErrInvalidToken)
	assert.NoError(t, svc.VerifyEmail(context.Background(), mails[1].token))

	stored, err := doctors.FindByEmail(context.Background(), "anne@example.org")
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
}

func TestResendVerificationIsNeutralForUnknownEmail(t *testing.T) {
	svc, _, m := newAuthFixture()

	assert.NoError(t, svc.ResendVerification(context.Background(), "nobody@example.org"))
	assert.Empty(t, m.sentTo("verification"))
}

func TestResendVerificationOnVerifiedAccount(t *testing.T) {
	svc, doctors, _ := newAuthFixture()
	seedDoctor(t, doctors, "anne@example.org", true)

	err := svc.ResendVerification(context.Background(), "anne@example.org")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyVerified)
}
