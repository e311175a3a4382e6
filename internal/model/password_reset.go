package model

import "time"

// PasswordReset is a single-use reset token. Only the SHA-256 hash of the
// token is persisted; lookups always go through the hash.
type PasswordReset struct {
	ID        uint       `gorm:"primarykey"`
	Email     string     `gorm:"column:email;not null;index:idx_password_resets_email"`
	TokenHash string     `gorm:"column:token_hash;uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at;default:null"`
	CreatedAt time.Time
}

// Usable reports whether the token can still be redeemed at the given time.
func (p *PasswordReset) Usable(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.ExpiresAt)
}
