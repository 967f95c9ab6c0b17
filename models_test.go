package account

import (
	"testing"
	"time"
)

func TestAccountEnsureStatusDefaultsToPending(t *testing.T) {
	a := &Account{}

	a.EnsureStatus()

	if a.Status != AccountStatusPending {
		t.Fatalf("expected default status %q, got %q", AccountStatusPending, a.Status)
	}
}

func TestAccountStatusHelpers(t *testing.T) {
	cases := []struct {
		name         string
		status       AccountStatus
		check        func(*Account) bool
		expectResult bool
	}{
		{
			name:         "active",
			status:       AccountStatusActive,
			check:        (*Account).IsActive,
			expectResult: true,
		},
		{
			name:         "pending",
			status:       AccountStatusPending,
			check:        (*Account).IsPending,
			expectResult: true,
		},
		{
			name:         "suspended",
			status:       AccountStatusSuspended,
			check:        (*Account).IsSuspended,
			expectResult: true,
		},
		{
			name:         "withdrawn",
			status:       AccountStatusWithdrawn,
			check:        (*Account).IsWithdrawn,
			expectResult: true,
		},
		{
			name:         "active is not pending",
			status:       AccountStatusActive,
			check:        (*Account).IsPending,
			expectResult: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &Account{Status: tc.status}
			if got := tc.check(a); got != tc.expectResult {
				t.Fatalf("expected %v, got %v", tc.expectResult, got)
			}
		})
	}
}

func TestAccountStatusValid(t *testing.T) {
	for _, s := range AccountStatuses {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}

	for _, s := range []AccountStatus{"", "archived", "ACTIVE"} {
		if s.Valid() {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestAccountResetWindow(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	a := &Account{ResetToken: "token"}

	if a.ResetWindowOpen(now) {
		t.Fatal("window without expiry must be closed")
	}

	a.ResetTokenExpiresAt = ExpiresAt(now, time.Minute)
	if !a.ResetWindowOpen(now) {
		t.Fatal("window should be open before expiry")
	}

	if a.ResetWindowOpen(now.Add(time.Minute)) {
		t.Fatal("window should be closed at expiry")
	}

	a.ClearResetToken()
	if a.HasResetToken() || a.ResetTokenExpiresAt != nil {
		t.Fatal("expected reset token and expiry to be cleared")
	}
}

func TestAccountMarkVerified(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	a := &Account{Status: AccountStatusPending}

	a.MarkVerified(now)

	if !a.EmailVerified || a.Status != AccountStatusActive {
		t.Fatalf("expected verified active account, got verified=%v status=%q", a.EmailVerified, a.Status)
	}
	if a.VerifiedAt == nil || !a.VerifiedAt.Equal(now) {
		t.Fatalf("expected verified_at %v, got %v", now, a.VerifiedAt)
	}
}

func TestGateErrorCoversEveryStatus(t *testing.T) {
	expected := map[AccountStatus]error{
		AccountStatusPending:   ErrEmailNotVerified,
		AccountStatusActive:    nil,
		AccountStatusSuspended: ErrAccountSuspended,
		AccountStatusWithdrawn: ErrAccountWithdrawn,
	}

	for _, status := range AccountStatuses {
		want, ok := expected[status]
		if !ok {
			t.Fatalf("status %q has no gate expectation", status)
		}
		got := gateError(&Account{Status: status, EmailVerified: true})
		if got != want {
			t.Fatalf("status %q: expected %v, got %v", status, want, got)
		}
	}

	if err := gateError(&Account{Status: "archived"}); err != ErrInvalidAccountStatus {
		t.Fatalf("expected unknown status error, got %v", err)
	}

	if err := gateError(&Account{Status: AccountStatusActive}); err != ErrEmailNotVerified {
		t.Fatalf("active account without verified email must not pass, got %v", err)
	}
}
