// Package config loads account service settings from defaults, an
// optional YAML file and the environment, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "ACCOUNT_"

// BaseConfig holds service settings
type BaseConfig struct {
	DatabaseDSN       string        `yaml:"database_dsn"`
	HTTPAddress       string        `yaml:"http_address"`
	BaseURL           string        `yaml:"base_url"`
	SenderAddress     string        `yaml:"sender_address"`
	SMTPHost          string        `yaml:"smtp_host"`
	SMTPPort          int           `yaml:"smtp_port"`
	SMTPUsername      string        `yaml:"smtp_username"`
	SMTPPassword      string        `yaml:"smtp_password"`
	ResetTokenTTL     time.Duration `yaml:"reset_token_ttl"`
	BcryptCost        int           `yaml:"bcrypt_cost"`
	PasswordMinLength int           `yaml:"password_min_length"`
	ResetRequiresName bool          `yaml:"reset_requires_name"`
	HashidIDs         bool          `yaml:"hashid_ids"`
	DisabledFeatures  []string      `yaml:"disabled_features"`
}

// Defaults returns a config usable for local development
func Defaults() *BaseConfig {
	return &BaseConfig{
		DatabaseDSN:       "file:accounts.db?cache=shared",
		HTTPAddress:       ":8080",
		BaseURL:           "http://localhost:8080",
		SenderAddress:     "no-reply@example.com",
		SMTPPort:          25,
		ResetTokenTTL:     2 * time.Hour,
		BcryptCost:        12,
		ResetRequiresName: true,
	}
}

// Load builds a config from defaults, then the YAML file at path when
// path is not empty, then .env files and the process environment.
func Load(path string, envFiles ...string) (*BaseConfig, error) {
	cfg := Defaults()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile overlays the YAML document at path
func (c *BaseConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return nil
}

// loadDotEnv never overrides variables already set in the environment.
// Missing files are ignored.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// ApplyEnv overlays ACCOUNT_* variables found through lookup
func (c *BaseConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}

	flag := func(key string, dst *bool) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("DATABASE_DSN", &c.DatabaseDSN)
	str("HTTP_ADDRESS", &c.HTTPAddress)
	str("BASE_URL", &c.BaseURL)
	str("SENDER_ADDRESS", &c.SenderAddress)
	str("SMTP_HOST", &c.SMTPHost)
	str("SMTP_USERNAME", &c.SMTPUsername)
	str("SMTP_PASSWORD", &c.SMTPPassword)

	if err := num("SMTP_PORT", &c.SMTPPort); err != nil {
		return err
	}
	if err := num("BCRYPT_COST", &c.BcryptCost); err != nil {
		return err
	}
	if err := num("PASSWORD_MIN_LENGTH", &c.PasswordMinLength); err != nil {
		return err
	}
	if err := flag("RESET_REQUIRES_NAME", &c.ResetRequiresName); err != nil {
		return err
	}
	if err := flag("HASHID_IDS", &c.HashidIDs); err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "DISABLED_FEATURES"); ok {
		c.DisabledFeatures = splitList(v)
	}

	if v, ok := lookup(EnvPrefix + "RESET_TOKEN_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sRESET_TOKEN_TTL: %w", EnvPrefix, err)
		}
		c.ResetTokenTTL = d
	}

	return nil
}

func splitList(v string) []string {
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate will run validation rules
func (c BaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.HTTPAddress, validation.Required),
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.SenderAddress, validation.Required, is.Email),
		validation.Field(&c.SMTPPort, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ResetTokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.BcryptCost, validation.Min(4), validation.Max(31)),
		validation.Field(&c.PasswordMinLength, validation.Min(0), validation.Max(72)),
	)
}

// SMTPEnabled reports whether an SMTP relay is configured
func (c BaseConfig) SMTPEnabled() bool {
	return strings.TrimSpace(c.SMTPHost) != ""
}

// Redacted returns a copy safe to print
func (c BaseConfig) Redacted() BaseConfig {
	if c.SMTPPassword != "" {
		c.SMTPPassword = "********"
	}
	if u, err := url.Parse(c.DatabaseDSN); err == nil && u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "********")
			c.DatabaseDSN = u.String()
		}
	}
	return c
}

func (c BaseConfig) GetDatabaseDSN() string {
	return c.DatabaseDSN
}

func (c BaseConfig) GetHTTPAddress() string {
	return c.HTTPAddress
}

func (c BaseConfig) GetBaseURL() string {
	return c.BaseURL
}

func (c BaseConfig) GetSenderAddress() string {
	return c.SenderAddress
}

func (c BaseConfig) GetResetTokenTTL() time.Duration {
	return c.ResetTokenTTL
}

func (c BaseConfig) GetBcryptCost() int {
	return c.BcryptCost
}

func (c BaseConfig) GetPasswordMinLength() int {
	return c.PasswordMinLength
}

func (c BaseConfig) GetResetRequiresName() bool {
	return c.ResetRequiresName
}

func (c BaseConfig) GetHashidIDs() bool {
	return c.HashidIDs
}

func (c BaseConfig) GetDisabledFeatures() []string {
	return c.DisabledFeatures
}
