package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-account/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := config.Defaults()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2*time.Hour, cfg.GetResetTokenTTL())
	assert.True(t, cfg.GetResetRequiresName())
	assert.False(t, cfg.GetHashidIDs())
	assert.False(t, cfg.SMTPEnabled())
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "account.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_dsn: postgres://svc:secret@db:5432/accounts
base_url: https://accounts.example.com
reset_token_ttl: 45m
reset_requires_name: false
smtp_host: smtp.example.com
smtp_port: 587
`), 0o600))

	cfg := config.Defaults()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "postgres://svc:secret@db:5432/accounts", cfg.GetDatabaseDSN())
	assert.Equal(t, "https://accounts.example.com", cfg.GetBaseURL())
	assert.Equal(t, 45*time.Minute, cfg.GetResetTokenTTL())
	assert.False(t, cfg.GetResetRequiresName())
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.SMTPEnabled())
	assert.Equal(t, ":8080", cfg.GetHTTPAddress())
}

func TestLoadFileMissing(t *testing.T) {
	cfg := config.Defaults()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ACCOUNT_BASE_URL":            "https://env.example.com",
		"ACCOUNT_BCRYPT_COST":         "10",
		"ACCOUNT_RESET_TOKEN_TTL":     "90m",
		"ACCOUNT_HASHID_IDS":          "true",
		"ACCOUNT_RESET_REQUIRES_NAME": "false",
		"ACCOUNT_DISABLED_FEATURES":   "users.signup, ,other",
		"ACCOUNT_PASSWORD_MIN_LENGTH": "8",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := config.Defaults()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, "https://env.example.com", cfg.GetBaseURL())
	assert.Equal(t, 10, cfg.GetBcryptCost())
	assert.Equal(t, 90*time.Minute, cfg.GetResetTokenTTL())
	assert.True(t, cfg.GetHashidIDs())
	assert.False(t, cfg.GetResetRequiresName())
	assert.Equal(t, []string{"users.signup", "other"}, cfg.GetDisabledFeatures())
	assert.Equal(t, 8, cfg.GetPasswordMinLength())
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"ACCOUNT_SMTP_PORT":       "twenty-five",
		"ACCOUNT_HASHID_IDS":      "maybe",
		"ACCOUNT_RESET_TOKEN_TTL": "two hours",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			}
			assert.Error(t, config.Defaults().ApplyEnv(lookup))
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ACCOUNT_SENDER_ADDRESS=mailer@example.com\n"), 0o600))

	t.Setenv("ACCOUNT_HTTP_ADDRESS", ":9090")
	t.Cleanup(func() { _ = os.Unsetenv("ACCOUNT_SENDER_ADDRESS") })

	cfg, err := config.Load("", envFile)
	require.NoError(t, err)

	assert.Equal(t, "mailer@example.com", cfg.GetSenderAddress())
	assert.Equal(t, ":9090", cfg.GetHTTPAddress())
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = config.Defaults()
	cfg.ResetTokenTTL = time.Second
	assert.Error(t, cfg.Validate())

	cfg = config.Defaults()
	cfg.BcryptCost = 40
	assert.Error(t, cfg.Validate())

	cfg = config.Defaults()
	cfg.SenderAddress = "not-an-address"
	assert.Error(t, cfg.Validate())

	cfg = config.Defaults()
	cfg.PasswordMinLength = 100
	assert.Error(t, cfg.Validate())
}

func TestRedacted(t *testing.T) {
	cfg := config.Defaults()
	cfg.DatabaseDSN = "postgres://svc:secret@db:5432/accounts"
	cfg.SMTPPassword = "hunter2"

	redacted := cfg.Redacted()
	assert.NotContains(t, redacted.DatabaseDSN, "secret")
	assert.Equal(t, "********", redacted.SMTPPassword)
	assert.Equal(t, "hunter2", cfg.SMTPPassword)
}
