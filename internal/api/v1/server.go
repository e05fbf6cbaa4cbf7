package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// ServerInterface lists every /api/v1 operation documented in openapi.yml.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error

	PostRegister(c *fiber.Ctx) error
	PostLogin(c *fiber.Ctx) error
	PostLogout(c *fiber.Ctx) error

	GetPlans(c *fiber.Ctx) error
	GetCurrentSubscription(c *fiber.Ctx) error
	PostSubscribe(c *fiber.Ctx) error
	PostCancelSubscription(c *fiber.Ctx) error
	PostReactivateSubscription(c *fiber.Ctx) error
	GetUsage(c *fiber.Ctx) error

	PostStripeWebhook(c *fiber.Ctx) error

	PostTodo(c *fiber.Ctx) error

	ListTeams(c *fiber.Ctx) error
	CreateTeam(c *fiber.Ctx) error
	GetTeam(c *fiber.Ctx) error
	UpdateTeam(c *fiber.Ctx) error
	DeleteTeam(c *fiber.Ctx) error
	ListTeamMembers(c *fiber.Ctx) error
	AddTeamMember(c *fiber.Ctx) error
	UpdateTeamMember(c *fiber.Ctx) error
	RemoveTeamMember(c *fiber.Ctx) error
	InviteTeamMember(c *fiber.Ctx) error
	JoinTeam(c *fiber.Ctx) error
	GetTeamStatistics(c *fiber.Ctx) error

	CreatePlan(c *fiber.Ctx) error
	UpdatePlan(c *fiber.Ctx) error
	ListReconciliationItems(c *fiber.Ctx) error
	RunReconciliationSweep(c *fiber.Ctx) error
}

// Middlewares guard the authenticated and admin-only routes.
type Middlewares struct {
	Auth  fiber.Handler
	Admin fiber.Handler
}

// RegisterHandlers mounts si on router. Routes keep the paths of openapi.yml.
func RegisterHandlers(router fiber.Router, si ServerInterface, mw Middlewares) {
	auth := mw.Auth
	if auth == nil {
		auth = passThrough
	}
	admin := mw.Admin
	if admin == nil {
		admin = passThrough
	}

	router.Get("/ping", si.GetPing)

	router.Post("/auth/register", si.PostRegister)
	router.Post("/auth/login", si.PostLogin)
	router.Post("/auth/logout", auth, si.PostLogout)

	router.Get("/subscription/plans", si.GetPlans)
	router.Get("/subscription/current", auth, si.GetCurrentSubscription)
	router.Post("/subscription/subscribe", auth, si.PostSubscribe)
	router.Post("/subscription/cancel", auth, si.PostCancelSubscription)
	router.Post("/subscription/reactivate", auth, si.PostReactivateSubscription)
	router.Get("/subscription/usage", auth, si.GetUsage)

	router.Post("/webhooks/stripe", si.PostStripeWebhook)

	router.Post("/todos", auth, si.PostTodo)

	router.Get("/teams", auth, si.ListTeams)
	router.Post("/teams", auth, si.CreateTeam)
	router.Get("/teams/:id", auth, si.GetTeam)
	router.Put("/teams/:id", auth, si.UpdateTeam)
	router.Delete("/teams/:id", auth, si.DeleteTeam)
	router.Get("/teams/:id/members", auth, si.ListTeamMembers)
	router.Post("/teams/:id/members", auth, si.AddTeamMember)
	router.Put("/teams/:id/members/:userId", auth, si.UpdateTeamMember)
	router.Delete("/teams/:id/members/:userId", auth, si.RemoveTeamMember)
	router.Post("/teams/:id/invite", auth, si.InviteTeamMember)
	router.Post("/teams/:id/join", auth, si.JoinTeam)
	router.Get("/teams/:id/statistics", auth, si.GetTeamStatistics)

	router.Post("/admin/plans", auth, admin, si.CreatePlan)
	router.Put("/admin/plans/:id", auth, admin, si.UpdatePlan)
	router.Get("/admin/billing/reconciliation", auth, admin, si.ListReconciliationItems)
	router.Post("/admin/billing/reconciliation/sweep", auth, admin, si.RunReconciliationSweep)
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}
