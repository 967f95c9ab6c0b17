package account_test

import (
	"testing"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
)

func TestExpiresAt(t *testing.T) {
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	got := account.ExpiresAt(now, 2*time.Hour)

	if assert.NotNil(t, got) {
		assert.Equal(t, now.Add(2*time.Hour), *got)
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	tests := []struct {
		name     string
		deadline *time.Time
		expected bool
	}{
		{
			name:     "Missing deadline",
			deadline: nil,
			expected: true,
		},
		{
			name:     "Deadline in the past",
			deadline: &past,
			expected: true,
		},
		{
			name:     "Deadline equals now",
			deadline: &now,
			expected: true, // must be strictly after now
		},
		{
			name:     "Deadline in the future",
			deadline: &future,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, account.IsExpired(tt.deadline, now))
		})
	}
}
