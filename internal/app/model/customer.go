package model

import (
	"strings"
	"time"
)

const RoleCustomer = "customer" // role claim for customer tokens

// Customer is the credential record for a marketplace user.
// The verification and reset code fields are nullable pairs: hash and issue time
// are either both set or both NULL.
type Customer struct {
	ID           uint   `gorm:"primarykey" json:"id"`                          // customer ID
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`    // lower-cased
	Name         string `gorm:"size:100;not null" json:"name"`                 // display name
	PhoneNumber  string `gorm:"size:20" json:"phoneNumber,omitempty"`          // optional
	Address      string `gorm:"type:text" json:"address,omitempty"`            // optional
	ProfileImage string `gorm:"size:512" json:"profileImage,omitempty"`        // uploaded image URL
	PasswordHash string `gorm:"size:255;not null" json:"-"`                    // bcrypt
	Verified     bool   `gorm:"not null;default:false" json:"verified"`        // email verified

	VerificationCode     *string    `gorm:"size:64" json:"-"` // HMAC of the outstanding verification code
	VerificationIssuedAt *time.Time `gorm:"index" json:"-"`
	ResetCode            *string    `gorm:"size:64" json:"-"` // HMAC of the outstanding reset code
	ResetIssuedAt        *time.Time `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Customer) TableName() string {
	return "customers"
}

// HasPendingVerification reports whether a verification code is outstanding.
func (c *Customer) HasPendingVerification() bool {
	return c.VerificationCode != nil && c.VerificationIssuedAt != nil
}

// HasPendingReset reports whether a password reset code is outstanding.
func (c *Customer) HasPendingReset() bool {
	return c.ResetCode != nil && c.ResetIssuedAt != nil
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
