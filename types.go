package account

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an account that passed the
// authentication gate and credential comparison
type Identity interface {
	ID() string
	Email() string
	Name() string
	Status() AccountStatus
}

// IdentityProvider resolves identities for an upstream login flow
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordHasher is the one way salted hash used for credentials
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenGenerator produces opaque identifiers used as bearer capabilities
// for email verification and password reset.
type TokenGenerator interface {
	Generate() (string, error)
}

// Config holds lifecycle options
type Config interface {
	GetBaseURL() string
	GetSenderAddress() string
	GetResetTokenTTL() time.Duration
	GetBcryptCost() int
	GetPasswordMinLength() int
	GetResetRequiresName() bool
	GetHashidIDs() bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
