package account

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// MaxPasswordLength is the longest input bcrypt will hash
const MaxPasswordLength = 72

// PasswordPolicy bounds the length of new passwords. A zero MinLength
// only requires a non empty password.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

// DefaultPasswordPolicy accepts any non empty password bcrypt can hash
var DefaultPasswordPolicy = PasswordPolicy{MaxLength: MaxPasswordLength}

func (p PasswordPolicy) rules() []validation.Rule {
	hi := p.MaxLength
	if hi <= 0 || hi > MaxPasswordLength {
		hi = MaxPasswordLength
	}
	lo := p.MinLength
	if lo > hi {
		lo = hi
	}
	return []validation.Rule{validation.Required, validation.Length(lo, hi)}
}

// WithPasswordPolicy sets the length rules for registration and reset
func WithPasswordPolicy(policy PasswordPolicy) Option {
	return func(l *AccountLifecycle) {
		l.passwords = policy
	}
}
