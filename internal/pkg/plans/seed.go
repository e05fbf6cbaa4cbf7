package plans

import (
	"context"
	"fmt"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/shopspring/decimal"
)

// DefaultPlans is the catalog a fresh installation starts with.
func DefaultPlans() []models.SubscriptionPlan {
	free := models.SubscriptionPlan{
		Slug: models.PlanSlugFree, Name: "Free", Description: "Personal todo lists, one collaborator per team",
		Price: decimal.Zero, Currency: "usd", Interval: models.PlanIntervalMonthly,
		MaxTodos: models.IntPtr(50), MaxTeamMembers: models.IntPtr(2), IsActive: true,
	}
	free.SetFeatures([]string{"basic_todos"})

	pro := models.SubscriptionPlan{
		Slug: "pro", Name: "Pro", Description: "Unlimited lists for power users",
		Price: decimal.RequireFromString("9.99"), Currency: "usd", Interval: models.PlanIntervalMonthly, TrialDays: 14,
		MaxTodos: models.IntPtr(1000), MaxTeamMembers: models.IntPtr(5), IsActive: true,
	}
	pro.SetFeatures([]string{"basic_todos", "teams", "api_access"})

	proYearly := pro
	proYearly.Slug = "pro-yearly"
	proYearly.Name = "Pro (yearly)"
	proYearly.Price = decimal.RequireFromString("99.99")
	proYearly.Interval = models.PlanIntervalYearly
	proYearly.SetFeatures([]string{"basic_todos", "teams", "api_access"})

	team := models.SubscriptionPlan{
		Slug: "team", Name: "Team", Description: "Unlimited todos and members",
		Price: decimal.RequireFromString("29.99"), Currency: "usd", Interval: models.PlanIntervalMonthly, TrialDays: 14,
		IsActive: true,
	}
	team.SetFeatures([]string{"basic_todos", "teams", "api_access", "priority_support"})

	return []models.SubscriptionPlan{free, pro, proYearly, team}
}

// SeedDefaults inserts DefaultPlans when the catalog is empty. It reports how many plans it created.
func (c *Catalog) SeedDefaults(ctx context.Context) (int, error) {
	count, err := c.repo.Count()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	defaults := DefaultPlans()
	for i := range defaults {
		if err := c.repo.Create(&defaults[i]); err != nil {
			return i, fmt.Errorf("seed plan %s: %w", defaults[i].Slug, err)
		}
	}
	c.Invalidate(ctx)
	c.log.WithField("plans", len(defaults)).Info("seeded default plan catalog")
	return len(defaults), nil
}
