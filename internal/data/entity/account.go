package entity

import "time"

type AccountRole string

const (
	RoleTenant AccountRole = "TENANT"
	RoleOwner  AccountRole = "OWNER"
	RoleAgent  AccountRole = "AGENT"
	RoleAdmin  AccountRole = "ADMIN"
)

// Account is the persisted credential record for one email address.
// OTPCode and OTPExpiresAt are written and cleared together, as are
// ResetToken and ResetTokenExpiresAt.
type Account struct {
	BaseNoDelete
	Email               string      `db:"email"`
	PasswordHash        string      `db:"password_hash"`
	Role                AccountRole `db:"role"`
	IsVerified          bool        `db:"is_verified"`
	OTPCode             *string     `db:"otp_code"`
	OTPExpiresAt        *time.Time  `db:"otp_expires_at"`
	OTPLastSentAt       *time.Time  `db:"otp_last_sent_at"`
	OTPRetryCount       int         `db:"otp_retry_count"`
	ResetToken          *string     `db:"reset_token"`
	ResetTokenExpiresAt *time.Time  `db:"reset_token_expires_at"`
}

// HasPendingOTP reports whether a verification code is outstanding.
func (a *Account) HasPendingOTP() bool {
	return a.OTPCode != nil && a.OTPExpiresAt != nil
}
