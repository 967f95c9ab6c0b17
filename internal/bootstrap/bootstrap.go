// Package bootstrap assembles the account lifecycle from a loaded config.
package bootstrap

import (
	"context"
	"log"

	account "github.com/goliatone/go-account"
	"github.com/goliatone/go-account/config"
	"github.com/goliatone/go-account/metrics"
	goerrors "github.com/goliatone/go-errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// Service is a ready to use lifecycle with its backing resources
type Service struct {
	Config    *config.BaseConfig
	DB        *bun.DB
	Dialect   account.Dialect
	Repo      account.RepositoryManager
	Lifecycle *account.AccountLifecycle
	Registry  *prometheus.Registry
	Metrics   *metrics.Collector
	Logger    account.Logger
}

type settings struct {
	logger   account.Logger
	notifier account.Notifier
	migrate  bool
	sinks    []account.ActivitySink
}

type Option func(*settings)

func WithLogger(logger account.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier overrides the notifier chosen from the config
func WithNotifier(n account.Notifier) Option {
	return func(s *settings) {
		s.notifier = n
	}
}

// WithMigrations runs pending migrations after opening the database
func WithMigrations(enabled bool) Option {
	return func(s *settings) {
		s.migrate = enabled
	}
}

// WithActivitySink adds a sink next to the metrics collector
func WithActivitySink(sink account.ActivitySink) Option {
	return func(s *settings) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// Open connects to the configured database and wires the lifecycle.
func Open(ctx context.Context, cfg *config.BaseConfig, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, goerrors.New("config is required", goerrors.CategoryBadInput)
	}

	s := &settings{logger: StdLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	db, dialect, err := account.OpenDB(cfg.GetDatabaseDSN())
	if err != nil {
		return nil, err
	}

	if s.migrate {
		applied, err := account.Migrate(ctx, db.DB, dialect)
		if err != nil {
			db.Close()
			return nil, err
		}
		if len(applied) > 0 {
			s.logger.Info("applied %d migration(s)", len(applied))
		}
	}

	repo := account.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(registry)
	if err != nil {
		db.Close()
		return nil, err
	}

	notifier := s.notifier
	if notifier == nil {
		notifier = NotifierFromConfig(*cfg, s.logger)
	}

	sinks := append(account.MultiActivitySink{collector}, s.sinks...)

	lifecycle := account.NewAccountLifecycleFromConfig(cfg, repo, notifier,
		account.WithLogger(s.logger),
		account.WithActivitySink(sinks),
		account.WithFeatureGate(account.NewStaticFeatureGate(cfg.GetDisabledFeatures()...)),
	)

	return &Service{
		Config:    cfg,
		DB:        db,
		Dialect:   dialect,
		Repo:      repo,
		Lifecycle: lifecycle,
		Registry:  registry,
		Metrics:   collector,
		Logger:    s.logger,
	}, nil
}

// Close releases the database handle
func (s *Service) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// NotifierFromConfig returns an SMTP notifier when a relay is configured,
// otherwise messages are written to the log.
func NotifierFromConfig(cfg config.BaseConfig, logger account.Logger) account.Notifier {
	if !cfg.SMTPEnabled() {
		return account.LogNotifier{Logger: logger}
	}
	return account.NewSMTPNotifier(account.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.GetSenderAddress(),
	}).WithLogger(logger)
}

// StdLogger writes through the standard log package
type StdLogger struct{}

func (StdLogger) Debug(format string, args ...any) {
	log.Printf("[DBG] "+format, args...)
}

func (StdLogger) Info(format string, args ...any) {
	log.Printf("[INF] "+format, args...)
}

func (StdLogger) Warn(format string, args ...any) {
	log.Printf("[WRN] "+format, args...)
}

func (StdLogger) Error(format string, args ...any) {
	log.Printf("[ERR] "+format, args...)
}
