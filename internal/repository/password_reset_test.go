package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dashmed/dashmed/internal/model"
	"github.com/dashmed/dashmed/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedResetRow(t *testing.T, db *gorm.DB, email, tokenHash string, expires time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&model.PasswordReset{
		Email:     email,
		TokenHash: tokenHash,
		ExpiresAt: expires,
	}).Error)
}

func TestPurgeRemovesOwnAndExpiredRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()

	seedResetRow(t, db, "anne@example.org", "hash-a", time.Now().Add(time.Hour))
	seedResetRow(t, db, "bob@example.org", "hash-b-old", time.Now().Add(-time.Hour))
	seedResetRow(t, db, "bob@example.org", "hash-b-live", time.Now().Add(time.Hour))

	require.NoError(t, repo.Purge(ctx, "ANNE@example.org"))

	count, err := repo.CountForEmail(ctx, "anne@example.org")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Bob's expired row went with the sweep, the live one stayed.
	count, err = repo.CountForEmail(ctx, "bob@example.org")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	ok, err := repo.Exists(ctx, "bob@example.org", "hash-b-live")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExistsIgnoresExpiredAndUsedRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()

	seedResetRow(t, db, "eve@example.org", "hash-expired", time.Now().Add(-time.Minute))
	now := time.Now()
	require.NoError(t, db.Create(&model.PasswordReset{
		Email:     "eve@example.org",
		TokenHash: "hash-used",
		ExpiresAt: now.Add(time.Hour),
		UsedAt:    &now,
	}).Error)

	ok, err := repo.Exists(ctx, "eve@example.org", "hash-expired")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Exists(ctx, "eve@example.org", "hash-used")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Exists(ctx, "eve@example.org", "hash-unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

// The redemption path locks the token row with SELECT ... FOR UPDATE, so it
// runs against a real Postgres when one is configured.

func seedRedeemFixture(t *testing.T, db *gorm.DB, email string) (rawToken string) {
	t.Helper()

	raw, err := token.New()
	require.NoError(t, err)

	doctor := model.Doctor{
		FirstName:     "Reset",
		LastName:      "Fixture",
		Email:         email,
		Password:      "old-hash",
		Active:        true,
		EmailVerified: true,
	}
	require.NoError(t, db.Create(&doctor).Error)
	seedResetRow(t, db, email, token.HashSHA256(raw), time.Now().Add(time.Hour))

	t.Cleanup(func() {
		db.Unscoped().Where("email = ?", email).Delete(&model.Doctor{})
		db.Where("email = ?", email).Delete(&model.PasswordReset{})
	})
	return raw
}

func TestRedeemConsumesTokenExactlyOnce(t *testing.T) {
	db := newPostgresTestDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()

	raw := seedRedeemFixture(t, db, "redeem-once@example.org")
	hash := token.HashSHA256(raw)

	outcome, err := repo.Redeem(ctx, hash, "new-hash")
	require.NoError(t, err)
	assert.Equal(t, RedeemOK, outcome)

	var doctor model.Doctor
	require.NoError(t, db.Where("email = ?", "redeem-once@example.org").First(&doctor).Error)
	assert.Equal(t, "new-hash", doctor.Password)

	var reset model.PasswordReset
	require.NoError(t, db.Where("token_hash = ?", hash).First(&reset).Error)
	assert.NotNil(t, reset.UsedAt)

	outcome, err = repo.Redeem(ctx, hash, "another-hash")
	require.NoError(t, err)
	assert.Equal(t, RedeemInvalidToken, outcome)

	require.NoError(t, db.Where("email = ?", "redeem-once@example.org").First(&doctor).Error)
	assert.Equal(t, "new-hash", doctor.Password)
}

func TestRedeemOrphanedTokenLeavesEverythingUntouched(t *testing.T) {
	db := newPostgresTestDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()

	raw, err := token.New()
	require.NoError(t, err)
	hash := token.HashSHA256(raw)
	seedResetRow(t, db, "nobody@example.org", hash, time.Now().Add(time.Hour))
	t.Cleanup(func() {
		db.Where("email = ?", "nobody@example.org").Delete(&model.PasswordReset{})
	})

	outcome, err := repo.Redeem(ctx, hash, "new-hash")
	require.NoError(t, err)
	assert.Equal(t, RedeemNoAccount, outcome)

	// The rollback keeps the token row unused.
	var reset model.PasswordReset
	require.NoError(t, db.Where("token_hash = ?", hash).First(&reset).Error)
	assert.Nil(t, reset.UsedAt)
}

func TestConcurrentRedeemAdmitsOneWinner(t *testing.T) {
	db := newPostgresTestDB(t)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()

	raw := seedRedeemFixture(t, db, "redeem-race@example.org")
	hash := token.HashSHA256(raw)

	const attempts = 4
	outcomes := make([]RedeemOutcome, attempts)
	errs := make([]error, attempts)

	var start, done sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			outcomes[i], errs[i] = repo.Redeem(ctx, hash, "race-hash")
		}(i)
	}
	start.Done()
	done.Wait()

	winners := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if outcomes[i] == RedeemOK {
			winners++
		} else {
			assert.Equal(t, RedeemInvalidToken, outcomes[i])
		}
	}
	assert.Equal(t, 1, winners)

	var doctor model.Doctor
	require.NoError(t, db.Where("email = ?", "redeem-race@example.org").First(&doctor).Error)
	assert.Equal(t, "race-hash", doctor.Password)
}
