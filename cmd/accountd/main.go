package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/goliatone/go-account/activitymap"
	"github.com/goliatone/go-account/config"
	"github.com/goliatone/go-account/httpapi"
	"github.com/goliatone/go-account/internal/bootstrap"
	"github.com/goliatone/go-account/metrics"
	"github.com/goliatone/go-print"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("ACCOUNT_CONFIG"), "Path to a YAML config file")
		envFile    = flag.String("env", ".env", "Optional dotenv file")
		migrate    = flag.Bool("migrate", true, "Apply pending migrations on start")
		auditLog   = flag.Bool("audit-log", true, "Log every activity event as a JSON line")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []bootstrap.Option{bootstrap.WithMigrations(*migrate)}
	if *auditLog {
		opts = append(opts, bootstrap.WithActivitySink(activitymap.NewLogSink(bootstrap.StdLogger{})))
	}

	svc, err := bootstrap.Open(ctx, cfg, opts...)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer svc.Close()

	svc.Logger.Info("config: %s", print.MaybePrettyJSON(cfg.Redacted()))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(svc.Registry)))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := svc.DB.PingContext(c.UserContext()); err != nil {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	httpapi.NewController(svc.Lifecycle, httpapi.WithLogger(svc.Logger)).
		RegisterRoutes(app.Group("/api"))

	errc := make(chan error, 1)
	go func() {
		svc.Logger.Info("listening on %s", cfg.GetHTTPAddress())
		errc <- app.Listen(cfg.GetHTTPAddress())
	}()

	select {
	case err := <-errc:
		if err != nil {
			log.Fatalf("listen: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			svc.Logger.Error("shutdown: %v", err)
		}
	}
}
