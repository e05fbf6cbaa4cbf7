// Package plans is the read side of the subscription plan catalog plus the
// administrator write path that keeps the cache coherent.
package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/logging"
	"github.com/ManuelReschke/TaskFox/internal/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	activePlansCacheKey = "plans:active"
	defaultCacheTTL     = 5 * time.Minute
)

var ErrNotFound = errors.New("plan not found")

// Catalog serves plans from the database, with an optional Redis cache for the active list.
type Catalog struct {
	repo    repository.PlanRepository
	rdb     *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithCache enables caching of the active plan list.
func WithCache(rdb *redis.Client, ttl time.Duration) Option {
	return func(c *Catalog) {
		c.rdb = rdb
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

func NewCatalog(repo repository.PlanRepository, opts ...Option) *Catalog {
	c := &Catalog{
		repo: repo,
		ttl:  defaultCacheTTL,
		log:  logging.Component("plans"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListActive returns active plans by ascending price.
func (c *Catalog) ListActive(ctx context.Context) ([]models.SubscriptionPlan, error) {
	if plans, ok := c.cached(ctx); ok {
		return plans, nil
	}

	plans, err := c.repo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	c.store(ctx, plans)
	return plans, nil
}

// GetByID returns the plan with id, active or not. Existing subscriptions keep
// pointing at retired plans, so the active flag is checked by callers that sell plans.
func (c *Catalog) GetByID(ctx context.Context, id uint) (*models.SubscriptionPlan, error) {
	_ = ctx
	plan, err := c.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (c *Catalog) GetBySlug(ctx context.Context, slug string) (*models.SubscriptionPlan, error) {
	_ = ctx
	plan, err := c.repo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return plan, nil
}

// Save creates or updates a plan and drops the cached list.
func (c *Catalog) Save(ctx context.Context, plan *models.SubscriptionPlan) error {
	var err error
	if plan.ID == 0 {
		err = c.repo.Create(plan)
	} else {
		err = c.repo.Save(plan)
	}
	if err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

// Invalidate removes the cached active list.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, activePlansCacheKey).Err(); err != nil {
		c.log.WithError(err).Warn("failed to invalidate plan cache")
	}
}

// IsFree reports whether plan costs nothing.
func IsFree(plan *models.SubscriptionPlan) bool {
	return plan.IsFree()
}

// PricePerMonth is price for monthly plans and price/12 for yearly plans.
func PricePerMonth(plan *models.SubscriptionPlan) decimal.Decimal {
	return plan.PricePerMonth()
}

func (c *Catalog) cached(ctx context.Context) ([]models.SubscriptionPlan, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, activePlansCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("plan cache read failed")
		}
		c.metrics.ObservePlanCache(false)
		return nil, false
	}
	var entries []cachedPlan
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.log.WithError(err).Warn("plan cache entry is corrupt")
		c.metrics.ObservePlanCache(false)
		return nil, false
	}
	c.metrics.ObservePlanCache(true)
	plans := make([]models.SubscriptionPlan, len(entries))
	for i, e := range entries {
		plans[i] = e.toModel()
	}
	return plans, true
}

func (c *Catalog) store(ctx context.Context, plans []models.SubscriptionPlan) {
	if c.rdb == nil {
		return
	}
	entries := make([]cachedPlan, len(plans))
	for i := range plans {
		entries[i] = newCachedPlan(&plans[i])
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, activePlansCacheKey, raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("plan cache write failed")
	}
}

// cachedPlan keeps the fields the public JSON of a plan hides.
type cachedPlan struct {
	models.SubscriptionPlan
	ProviderPriceID string `json:"provider_price_id"`
}

func newCachedPlan(p *models.SubscriptionPlan) cachedPlan {
	return cachedPlan{SubscriptionPlan: *p, ProviderPriceID: p.ProviderPriceID}
}

func (e cachedPlan) toModel() models.SubscriptionPlan {
	p := e.SubscriptionPlan
	p.ProviderPriceID = e.ProviderPriceID
	return p
}
