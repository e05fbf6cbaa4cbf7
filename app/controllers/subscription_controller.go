package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/internal/pkg/billing"
	"github.com/ManuelReschke/TaskFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/TaskFox/internal/pkg/plans"
	"github.com/ManuelReschke/TaskFox/internal/pkg/usercontext"
)

type SubscriptionController struct {
	billing   *billing.Service
	catalog   *plans.Catalog
	evaluator *entitlements.Evaluator
	now       func() time.Time
}

func NewSubscriptionController(billingService *billing.Service, catalog *plans.Catalog, evaluator *entitlements.Evaluator) *SubscriptionController {
	return &SubscriptionController{billing: billingService, catalog: catalog, evaluator: evaluator, now: time.Now}
}

type SubscribeRequest struct {
	PlanID          uint   `json:"plan_id" validate:"required"`
	PaymentMethodID string `json:"payment_method_id" validate:"max=255"`
}

// PlanResponse is the public view of a catalog entry.
type PlanResponse struct {
	ID             uint     `json:"id"`
	Slug           string   `json:"slug"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          string   `json:"price"`
	Currency       string   `json:"currency"`
	Interval       string   `json:"interval"`
	TrialDays      int      `json:"trial_days"`
	MaxTodos       *int     `json:"max_todos"`
	MaxTeamMembers *int     `json:"max_team_members"`
	Features       []string `json:"features"`
	FormattedPrice string   `json:"formatted_price"`
	PricePerMonth  string   `json:"price_per_month"`
	IsFree         bool     `json:"is_free"`
}

func newPlanResponse(p *models.SubscriptionPlan) PlanResponse {
	features := p.FeatureList()
	if features == nil {
		features = []string{}
	}
	return PlanResponse{
		ID:             p.ID,
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price.StringFixed(2),
		Currency:       p.Currency,
		Interval:       p.Interval,
		TrialDays:      p.TrialDays,
		MaxTodos:       p.MaxTodos,
		MaxTeamMembers: p.MaxTeamMembers,
		Features:       features,
		FormattedPrice: p.FormattedPrice(),
		PricePerMonth:  p.FormattedPricePerMonth(),
		IsFree:         p.IsFree(),
	}
}

func (sc *SubscriptionController) subscriptionResponse(sub *models.UserSubscription, plan *models.SubscriptionPlan) fiber.Map {
	now := sc.now()
	resp := fiber.Map{
		"id":                   sub.ID,
		"status":               sub.Status,
		"status_label":         sub.StatusLabel(),
		"current_period_start": sub.CurrentPeriodStart.UTC().Format(time.RFC3339),
		"current_period_end":   sub.CurrentPeriodEnd.UTC().Format(time.RFC3339),
		"is_active":            sub.IsActiveAt(now),
		"days_remaining":       sub.DaysRemainingAt(now),
		"in_trial":             sub.IsInTrialAt(now),
		"trial_days_remaining": sub.TrialDaysRemainingAt(now),
		"trial_ends_at":        formatTimePtr(sub.TrialEndsAt),
		"cancelled_at":         formatTimePtr(sub.CancelledAt),
		"next_billing_date":    formatTimePtr(sub.NextBillingDateAt(now)),
		"plan":                 nil,
	}
	if plan != nil {
		resp["plan"] = newPlanResponse(plan)
	}
	return resp
}

func (sc *SubscriptionController) HandlePlans(c *fiber.Ctx) error {
	active, err := sc.catalog.ListActive(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]PlanResponse, 0, len(active))
	for i := range active {
		out = append(out, newPlanResponse(&active[i]))
	}
	return c.JSON(fiber.Map{"plans": out})
}

func (sc *SubscriptionController) HandleCurrent(c *fiber.Ctx) error {
	cur, err := sc.billing.Current(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"subscription": sc.subscriptionResponse(cur.Subscription, cur.Plan)})
}

func (sc *SubscriptionController) HandleSubscribe(c *fiber.Ctx) error {
	var req SubscribeRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	sub, err := sc.billing.Subscribe(ctx, usercontext.GetUserID(c), req.PlanID, req.PaymentMethodID)
	if err != nil {
		return respondError(c, err)
	}
	plan, _ := sc.catalog.GetByID(ctx, sub.PlanID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Subscription created",
		"subscription": sc.subscriptionResponse(sub, plan),
	})
}

func (sc *SubscriptionController) HandleCancel(c *fiber.Ctx) error {
	sub, err := sc.billing.Cancel(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	plan, _ := sc.catalog.GetByID(c.UserContext(), sub.PlanID)
	return c.JSON(fiber.Map{
		"message":      "Subscription cancelled",
		"subscription": sc.subscriptionResponse(sub, plan),
	})
}

func (sc *SubscriptionController) HandleReactivate(c *fiber.Ctx) error {
	sub, err := sc.billing.Reactivate(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	plan, _ := sc.catalog.GetByID(c.UserContext(), sub.PlanID)
	return c.JSON(fiber.Map{
		"message":      "Subscription reactivated",
		"subscription": sc.subscriptionResponse(sub, plan),
	})
}

func (sc *SubscriptionController) HandleUsage(c *fiber.Ctx) error {
	usage, err := sc.evaluator.Usage(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"usage": usage,
		"remaining": fiber.Map{
			"todos": usage.Todos.Remaining(),
			"teams": usage.Teams.Remaining(),
		},
	})
}
