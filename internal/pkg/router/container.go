package router

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ManuelReschke/TaskFox/app/controllers"
	"github.com/ManuelReschke/TaskFox/app/repository"
	apiv1 "github.com/ManuelReschke/TaskFox/internal/api/v1"
	"github.com/ManuelReschke/TaskFox/internal/pkg/billing"
	"github.com/ManuelReschke/TaskFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/TaskFox/internal/pkg/metrics"
	"github.com/ManuelReschke/TaskFox/internal/pkg/plans"
	"github.com/ManuelReschke/TaskFox/internal/pkg/teams"
)

// Config collects what the container needs from the outside world.
// Cache, Provider and Archiver are optional.
type Config struct {
	DB            *gorm.DB
	Cache         *redis.Client
	PlanCacheTTL  time.Duration
	Provider      billing.Provider
	Billing       billing.Config
	Archiver      billing.PayloadArchiver
	Metrics       *metrics.Metrics
	LimiterMax    int
	LimiterWindow time.Duration
	Now           func() time.Time
}

// Container holds the services behind the API.
type Container struct {
	cfg        Config
	Repos      *repository.Repositories
	Catalog    *plans.Catalog
	Evaluator  *entitlements.Evaluator
	Billing    *billing.Service
	Reconciler *billing.Reconciler
	Sweeper    *billing.Sweeper
	Teams      *teams.Service
}

func NewContainer(cfg Config) *Container {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop()
	}
	if cfg.Provider == nil {
		cfg.Provider = billing.NewDisabledProvider()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.PlanCacheTTL <= 0 {
		cfg.PlanCacheTTL = 5 * time.Minute
	}

	repos := repository.NewRepositories(cfg.DB)

	catalogOpts := []plans.Option{plans.WithMetrics(cfg.Metrics)}
	if cfg.Cache != nil {
		catalogOpts = append(catalogOpts, plans.WithCache(cfg.Cache, cfg.PlanCacheTTL))
	}

	billingOpts := []billing.Option{
		billing.WithClock(cfg.Now),
		billing.WithMetrics(cfg.Metrics),
		billing.WithBatchSize(cfg.Billing.SweepBatchSize),
	}
	reconcilerOpts := billingOpts
	if cfg.Archiver != nil {
		reconcilerOpts = append(append([]billing.Option{}, billingOpts...), billing.WithArchiver(cfg.Archiver))
	}
	verifier := billing.NewStripeSignatureVerifier(cfg.Billing.WebhookSecret, cfg.Billing.WebhookTolerance)

	return &Container{
		cfg:        cfg,
		Repos:      repos,
		Catalog:    plans.NewCatalog(repos.Plan, catalogOpts...),
		Evaluator:  entitlements.NewEvaluator(repos, entitlements.WithClock(cfg.Now), entitlements.WithMetrics(cfg.Metrics)),
		Billing:    billing.NewService(repos, cfg.Provider, billingOpts...),
		Reconciler: billing.NewReconciler(repos, verifier, reconcilerOpts...),
		Sweeper:    billing.NewSweeper(repos, cfg.Provider, billingOpts...),
		Teams:      teams.NewService(repos, teams.WithClock(cfg.Now)),
	}
}

// Controllers builds one controller per API area.
func (c *Container) Controllers() apiv1.Controllers {
	return apiv1.Controllers{
		Auth:         controllers.NewAuthController(c.Repos, c.Billing),
		Subscription: controllers.NewSubscriptionController(c.Billing, c.Catalog, c.Evaluator),
		Webhook:      controllers.NewWebhookController(c.Reconciler),
		Todo:         controllers.NewTodoController(c.Repos, c.Teams, c.Evaluator),
		Team:         controllers.NewTeamController(c.Repos, c.Teams, c.Evaluator),
		Admin:        controllers.NewAdminController(c.Repos, c.Catalog, c.Sweeper),
	}
}
