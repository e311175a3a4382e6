package repository

import (
	"context"
	"testing"
	"time"

	"github.com/dashmed/dashmed/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUnverifiedDoctor(t *testing.T, db *gorm.DB, email, tok string, expires time.Time) model.Doctor {
	t.Helper()
	doctor := model.Doctor{
		FirstName:           "Anne",
		LastName:            "Petit",
		Email:               email,
		Password:            "x",
		Active:              true,
		VerificationToken:   tok,
		VerificationExpires: &expires,
	}
	require.NoError(t, db.Create(&doctor).Error)
	return doctor
}

func TestFindByEmailIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewDoctorRepository(db)
	seedUnverifiedDoctor(t, db, "anne.petit@example.org", "tok-case", time.Now().Add(time.Hour))

	doctor, err := repo.FindByEmail(context.Background(), "Anne.Petit@Example.ORG")
	require.NoError(t, err)
	assert.Equal(t, "anne.petit@example.org", doctor.Email)

	exists, err := repo.EmailExists(context.Background(), "ANNE.PETIT@example.org")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRedeemVerificationTokenIsSingleUse(t *testing.T) {
	db := newTestDB(t)
	repo := NewDoctorRepository(db)
	doctor := seedUnverifiedDoctor(t, db, "anne@example.org", "tok-once", time.Now().Add(time.Hour))

	ok, err := repo.RedeemVerificationToken(context.Background(), "tok-once")
	require.NoError(t, err)
	assert.True(t, ok)

	verified, err := repo.FindByID(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)
	assert.Empty(t, verified.VerificationToken)
	assert.NotNil(t, verified.ActivatedAt)

	// Second click on the same link matches no row.
	ok, err = repo.RedeemVerificationToken(context.Background(), "tok-once")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedeemVerificationTokenRejectsExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewDoctorRepository(db)
	doctor := seedUnverifiedDoctor(t, db, "late@example.org", "tok-late", time.Now().Add(-time.Minute))

	ok, err := repo.RedeemVerificationToken(context.Background(), "tok-late")
	require.NoError(t, err)
	assert.False(t, ok)

	unchanged, err := repo.FindByID(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.False(t, unchanged.EmailVerified)
}

func TestUpdateEmailDropsVerifiedFlag(t *testing.T) {
	db := newTestDB(t)
	repo := NewDoctorRepository(db)
	doctor := seedUnverifiedDoctor(t, db, "old@example.org", "tok-mail", time.Now().Add(time.Hour))

	ok, err := repo.RedeemVerificationToken(context.Background(), "tok-mail")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.UpdateEmail(context.Background(), doctor.ID, "new@example.org"))

	updated, err := repo.FindByID(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.org", updated.Email)
	assert.False(t, updated.EmailVerified)
}
