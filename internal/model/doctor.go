package model

import (
	"time"

	"gorm.io/gorm"
)

// Doctor is a registered practitioner account. Email is stored lowercase
// and unique; the password column only ever holds a bcrypt hash.
type Doctor struct {
	gorm.Model
	FirstName     string `gorm:"column:first_name;not null"`
	LastName      string `gorm:"column:last_name;not null"`
	Email         string `gorm:"column:email;unique;not null"`
	Password      string `gorm:"column:password;not null"`
	Sex           string `gorm:"column:sex;size:1"`
	Specialty     string `gorm:"column:specialty"`
	Active        bool   `gorm:"column:active;default:true;not null"`
	EmailVerified bool   `gorm:"column:email_verified;default:false;not null"`

	// Verification token lives on the account row; it is cleared on
	// redemption, which is what makes redemption single-use.
	VerificationToken   string     `gorm:"column:email_verification_token;default:null;index:idx_doctors_verification_token,where:email_verification_token IS NOT NULL"`
	VerificationExpires *time.Time `gorm:"column:email_verification_expires;default:null"`
	ActivatedAt         *time.Time `gorm:"column:activated_at;default:null"`
}

// DisplayName is the name shown in the header and in emails.
func (d *Doctor) DisplayName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}
