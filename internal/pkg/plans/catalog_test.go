package plans

import (
	"context"
	"testing"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/metrics"
	"github.com/ManuelReschke/TaskFox/internal/pkg/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultsAndListActive(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	c := NewCatalog(repos.Plan)
	ctx := context.Background()

	n, err := c.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// second run is a no-op
	n, err = c.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	plans, err := c.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 4)
	for i := 1; i < len(plans); i++ {
		assert.True(t, plans[i-1].Price.LessThanOrEqual(plans[i].Price), "plans must be ordered by ascending price")
	}
	assert.Equal(t, models.PlanSlugFree, plans[0].Slug)
	assert.True(t, IsFree(&plans[0]))

	// the owner's own membership counts, so a free team has room for one collaborator
	seats, limited := plans[0].MaxTeamMembersLimit()
	assert.True(t, limited)
	assert.Equal(t, 2, seats)

	yearly, err := c.GetBySlug(ctx, "pro-yearly")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("99.99").Div(decimal.NewFromInt(12)).Equal(PricePerMonth(yearly)))
}

func TestGetByIDNotFound(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	c := NewCatalog(repos.Plan)

	_, err := c.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActiveUsesCacheAndSaveInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	m := metrics.NewMetrics(prometheus.NewRegistry())

	repos := repository.NewRepositories(testutil.NewDB(t))
	c := NewCatalog(repos.Plan, WithCache(rdb, 0), WithMetrics(m))
	ctx := context.Background()

	plan := &models.SubscriptionPlan{Slug: "pro", Name: "Pro", Price: decimal.RequireFromString("9.99"), Currency: "usd", Interval: models.PlanIntervalMonthly, IsActive: true, ProviderPriceID: "price_pro"}
	require.NoError(t, c.Save(ctx, plan))

	first, err := c.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, mr.Exists(activePlansCacheKey))

	// a write that bypasses the catalog is not visible until the cache is dropped
	require.NoError(t, repos.Plan.Create(&models.SubscriptionPlan{Slug: "team", Name: "Team", Price: decimal.RequireFromString("29"), Currency: "usd", Interval: models.PlanIntervalMonthly, IsActive: true}))
	cached, err := c.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "price_pro", cached[0].ProviderPriceID)
	assert.True(t, decimal.RequireFromString("9.99").Equal(cached[0].Price))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.PlanCacheLookupsTotal.WithLabelValues("hit")))

	plan.Name = "Pro Plus"
	require.NoError(t, c.Save(ctx, plan))
	assert.False(t, mr.Exists(activePlansCacheKey))

	fresh, err := c.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "Pro Plus", fresh[0].Name)
}
