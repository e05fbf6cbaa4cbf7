package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/billing"
	"github.com/ManuelReschke/TaskFox/internal/pkg/plans"
)

var ErrPlanSlugTaken = errors.New("a plan with this slug already exists")

// AdminController handles catalog administration and billing follow-ups
type AdminController struct {
	repos   *repository.Repositories
	catalog *plans.Catalog
	sweeper *billing.Sweeper
}

// NewAdminController creates a new admin controller with repository dependencies
func NewAdminController(repos *repository.Repositories, catalog *plans.Catalog, sweeper *billing.Sweeper) *AdminController {
	return &AdminController{
		repos:   repos,
		catalog: catalog,
		sweeper: sweeper,
	}
}

type PlanRequest struct {
	Slug            string          `json:"slug" validate:"required,max=50"`
	Name            string          `json:"name" validate:"required,max=100"`
	Description     string          `json:"description" validate:"max=2000"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency" validate:"required,len=3"`
	Interval        string          `json:"interval" validate:"required,oneof=monthly yearly"`
	TrialDays       int             `json:"trial_days" validate:"gte=0,lte=365"`
	MaxTodos        *int            `json:"max_todos" validate:"omitempty,gte=0"`
	MaxTeamMembers  *int            `json:"max_team_members" validate:"omitempty,gte=0"`
	Features        []string        `json:"features" validate:"dive,required,max=64"`
	ProviderPriceID string          `json:"provider_price_id" validate:"max=191"`
	IsActive        *bool           `json:"is_active"`
}

func (r *PlanRequest) apply(p *models.SubscriptionPlan) error {
	if r.Price.IsNegative() {
		return models.ErrInvalidPlanPrice
	}
	p.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	p.Name = strings.TrimSpace(r.Name)
	p.Description = r.Description
	p.Price = r.Price.Round(2)
	p.Currency = r.Currency
	p.Interval = r.Interval
	p.TrialDays = r.TrialDays
	p.MaxTodos = r.MaxTodos
	p.MaxTeamMembers = r.MaxTeamMembers
	p.SetFeatures(r.Features)
	p.ProviderPriceID = strings.TrimSpace(r.ProviderPriceID)
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return nil
}

func (ac *AdminController) HandleCreatePlan(c *fiber.Ctx) error {
	var req PlanRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	plan := &models.SubscriptionPlan{IsActive: true}
	if err := req.apply(plan); err != nil {
		return respondError(c, err)
	}
	if _, err := ac.catalog.GetBySlug(c.UserContext(), plan.Slug); err == nil {
		return respondError(c, ErrPlanSlugTaken)
	} else if !errors.Is(err, plans.ErrNotFound) {
		return respondError(c, err)
	}
	if err := ac.catalog.Save(c.UserContext(), plan); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": newPlanResponse(plan)})
}

func (ac *AdminController) HandleUpdatePlan(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req PlanRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	plan, err := ac.catalog.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if slug := strings.ToLower(strings.TrimSpace(req.Slug)); slug != plan.Slug {
		if _, err := ac.catalog.GetBySlug(ctx, slug); err == nil {
			return respondError(c, ErrPlanSlugTaken)
		}
	}
	if err := req.apply(plan); err != nil {
		return respondError(c, err)
	}
	if err := ac.catalog.Save(ctx, plan); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"plan": newPlanResponse(plan)})
}

// HandleReconciliation lists billing items that still need a successful retry.
func (ac *AdminController) HandleReconciliation(c *fiber.Ctx) error {
	items, err := ac.repos.Reconciliation.ListOpen(c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// HandleRunSweep runs one reconciliation sweep immediately.
func (ac *AdminController) HandleRunSweep(c *fiber.Ctx) error {
	report, err := ac.sweeper.Run(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"report": report})
}
