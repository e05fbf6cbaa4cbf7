package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	apiv1 "github.com/ManuelReschke/TaskFox/internal/api/v1"
	"github.com/ManuelReschke/TaskFox/internal/pkg/billing"
	"github.com/ManuelReschke/TaskFox/internal/pkg/cache"
	"github.com/ManuelReschke/TaskFox/internal/pkg/database"
	"github.com/ManuelReschke/TaskFox/internal/pkg/env"
	"github.com/ManuelReschke/TaskFox/internal/pkg/logging"
	"github.com/ManuelReschke/TaskFox/internal/pkg/metrics"
	"github.com/ManuelReschke/TaskFox/internal/pkg/router"
	"github.com/ManuelReschke/TaskFox/internal/pkg/webhookarchive"
)

func main() {
	app, scheduler := NewApplication()
	scheduler.Start()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		<-scheduler.Stop().Done()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *cron.Cron) {
	env.SetupEnvFile()
	l := logging.Setup()
	database.SetupDatabase()
	cache.SetupCache()

	ctx := context.Background()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/taskfox to project root
		"../../../", // Fallback
	}
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}
	specFile := basePath + "public/docs/v1/openapi.yml"
	if _, err := apiv1.LoadSpec(ctx, specFile); err != nil {
		l.WithError(err).Fatal("invalid OpenAPI document")
	}

	billingCfg := billing.ConfigFromEnv()
	var provider billing.Provider
	if billingCfg.ProviderEnabled() {
		provider = billing.NewStripeProvider(billingCfg.SecretKey)
	} else {
		l.Warn("STRIPE_SECRET_KEY not set, paid subscriptions are disabled")
	}

	cfg := router.Config{
		DB:            database.GetDB(),
		PlanCacheTTL:  env.GetDuration("PLAN_CACHE_TTL", 5*time.Minute),
		Provider:      provider,
		Billing:       billingCfg,
		Metrics:       metrics.NewMetrics(prometheus.DefaultRegisterer),
		LimiterMax:    env.GetInt("API_RATE_LIMIT", 120),
		LimiterWindow: env.GetDuration("API_RATE_WINDOW", time.Minute),
	}

	if cache.Available(ctx) {
		cfg.Cache = cache.GetClient()
	} else {
		l.Warn("cache unavailable, plan cache and shared rate limits are disabled")
	}

	archiveCfg, err := webhookarchive.LoadConfig()
	if err != nil {
		l.WithError(err).Fatal("invalid webhook archive configuration")
	}
	if archiveCfg.IsEnabled() {
		archive, err := webhookarchive.NewClient(ctx, archiveCfg)
		if err != nil {
			l.WithError(err).Fatal("webhook archive unavailable")
		}
		cfg.Archiver = archive
	}

	container := router.NewContainer(cfg)

	if n, err := container.Catalog.SeedDefaults(ctx); err != nil {
		l.WithError(err).Error("seeding default plans failed")
	} else if n > 0 {
		l.Infof("seeded %d default plans", n)
	}

	scheduler := cron.New()
	if _, err := container.Sweeper.Schedule(scheduler, billingCfg.SweepSchedule); err != nil {
		l.WithError(err).Fatal("invalid BILLING_SWEEP_SCHEDULE")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// fiber metrics
	app.Get("/monitor", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("MONITOR_USER", "admin"): env.GetEnv("MONITOR_PASSWORD", "test"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: specFile,
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app, container)

	return app, scheduler
}
