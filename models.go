package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus governs authentication eligibility
type AccountStatus string

const (
	// AccountStatusPending is a registered account that has not verified its email
	AccountStatusPending AccountStatus = "pending"
	// AccountStatusActive is a verified account allowed to authenticate
	AccountStatusActive AccountStatus = "active"
	// AccountStatusSuspended is an account blocked by an operator
	AccountStatusSuspended AccountStatus = "suspended"
	// AccountStatusWithdrawn is an account closed by its owner, terminal
	AccountStatusWithdrawn AccountStatus = "withdrawn"
)

// AccountStatuses lists every known status
var AccountStatuses = []AccountStatus{
	AccountStatusPending,
	AccountStatusActive,
	AccountStatusSuspended,
	AccountStatusWithdrawn,
}

// Valid reports whether s is one of the known statuses
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusPending, AccountStatusActive, AccountStatusSuspended, AccountStatusWithdrawn:
		return true
	default:
		return false
	}
}

func (s AccountStatus) String() string {
	return string(s)
}

// Account is the account model
type Account struct {
	bun.BaseModel       `bun:"table:accounts,alias:acc"`
	ID                  uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	Email               string        `bun:"email,notnull,unique" json:"email"`
	Name                string        `bun:"name,notnull" json:"name"`
	PasswordHash        string        `bun:"password_hash,notnull" json:"-"`
	EmailVerified       bool          `bun:"is_email_verified,notnull" json:"is_email_verified"`
	VerificationToken   string        `bun:"verification_token,notnull" json:"-"`
	VerifiedAt          *time.Time    `bun:"verified_at" json:"verified_at,omitempty"`
	Status              AccountStatus `bun:"status,notnull" json:"status"`
	ResetToken          string        `bun:"reset_token,notnull" json:"-"`
	ResetTokenExpiresAt *time.Time    `bun:"reset_token_expires_at" json:"reset_token_expires_at,omitempty"`
	RegisteredAt        time.Time     `bun:"registered_at,notnull" json:"registered_at"`
	UpdatedAt           *time.Time    `bun:"updated_at" json:"updated_at,omitempty"`
}

// EnsureStatus defaults an empty status to pending, new records
// are never eligible for authentication until verified.
func (a *Account) EnsureStatus() {
	if a.Status == "" {
		a.Status = AccountStatusPending
	}
}

func (a *Account) IsPending() bool {
	return a.Status == AccountStatusPending
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

func (a *Account) IsSuspended() bool {
	return a.Status == AccountStatusSuspended
}

func (a *Account) IsWithdrawn() bool {
	return a.Status == AccountStatusWithdrawn
}

// HasResetToken reports whether a reset token was issued and not consumed
func (a *Account) HasResetToken() bool {
	return a.ResetToken != ""
}

// ResetWindowOpen reports whether the reset token expiry is set and
// still in the future at now.
func (a *Account) ResetWindowOpen(now time.Time) bool {
	return !IsExpired(a.ResetTokenExpiresAt, now)
}

// ClearResetToken consumes the reset token
func (a *Account) ClearResetToken() {
	a.ResetToken = ""
	a.ResetTokenExpiresAt = nil
}

// MarkVerified moves the account out of pending
func (a *Account) MarkVerified(at time.Time) {
	a.EmailVerified = true
	a.Status = AccountStatusActive
	a.VerifiedAt = &at
}

func (a *Account) touch(at time.Time) {
	a.UpdatedAt = &at
}
