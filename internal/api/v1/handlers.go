package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TaskFox/app/controllers"
)

// Controllers groups the HTTP controllers the API delegates to.
type Controllers struct {
	Auth         *controllers.AuthController
	Subscription *controllers.SubscriptionController
	Webhook      *controllers.WebhookController
	Todo         *controllers.TodoController
	Team         *controllers.TeamController
	Admin        *controllers.AdminController
}

// APIServer implements the ServerInterface
type APIServer struct {
	c Controllers
}

// NewAPIServer creates a new API server instance
func NewAPIServer(c Controllers) *APIServer {
	return &APIServer{c: c}
}

var _ ServerInterface = (*APIServer)(nil)

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

func (s *APIServer) PostRegister(c *fiber.Ctx) error { return s.c.Auth.HandleRegister(c) }
func (s *APIServer) PostLogin(c *fiber.Ctx) error    { return s.c.Auth.HandleLogin(c) }
func (s *APIServer) PostLogout(c *fiber.Ctx) error   { return s.c.Auth.HandleLogout(c) }

func (s *APIServer) GetPlans(c *fiber.Ctx) error { return s.c.Subscription.HandlePlans(c) }
func (s *APIServer) GetCurrentSubscription(c *fiber.Ctx) error {
	return s.c.Subscription.HandleCurrent(c)
}
func (s *APIServer) PostSubscribe(c *fiber.Ctx) error { return s.c.Subscription.HandleSubscribe(c) }
func (s *APIServer) PostCancelSubscription(c *fiber.Ctx) error {
	return s.c.Subscription.HandleCancel(c)
}
func (s *APIServer) PostReactivateSubscription(c *fiber.Ctx) error {
	return s.c.Subscription.HandleReactivate(c)
}
func (s *APIServer) GetUsage(c *fiber.Ctx) error { return s.c.Subscription.HandleUsage(c) }

func (s *APIServer) PostStripeWebhook(c *fiber.Ctx) error { return s.c.Webhook.HandleStripe(c) }

func (s *APIServer) PostTodo(c *fiber.Ctx) error { return s.c.Todo.HandleCreate(c) }

func (s *APIServer) ListTeams(c *fiber.Ctx) error         { return s.c.Team.HandleList(c) }
func (s *APIServer) CreateTeam(c *fiber.Ctx) error        { return s.c.Team.HandleCreate(c) }
func (s *APIServer) GetTeam(c *fiber.Ctx) error           { return s.c.Team.HandleGet(c) }
func (s *APIServer) UpdateTeam(c *fiber.Ctx) error        { return s.c.Team.HandleUpdate(c) }
func (s *APIServer) DeleteTeam(c *fiber.Ctx) error        { return s.c.Team.HandleDelete(c) }
func (s *APIServer) ListTeamMembers(c *fiber.Ctx) error   { return s.c.Team.HandleMembers(c) }
func (s *APIServer) AddTeamMember(c *fiber.Ctx) error     { return s.c.Team.HandleAddMember(c) }
func (s *APIServer) UpdateTeamMember(c *fiber.Ctx) error  { return s.c.Team.HandleUpdateMember(c) }
func (s *APIServer) RemoveTeamMember(c *fiber.Ctx) error  { return s.c.Team.HandleRemoveMember(c) }
func (s *APIServer) InviteTeamMember(c *fiber.Ctx) error  { return s.c.Team.HandleInvite(c) }
func (s *APIServer) JoinTeam(c *fiber.Ctx) error          { return s.c.Team.HandleJoin(c) }
func (s *APIServer) GetTeamStatistics(c *fiber.Ctx) error { return s.c.Team.HandleStatistics(c) }

func (s *APIServer) CreatePlan(c *fiber.Ctx) error { return s.c.Admin.HandleCreatePlan(c) }
func (s *APIServer) UpdatePlan(c *fiber.Ctx) error { return s.c.Admin.HandleUpdatePlan(c) }
func (s *APIServer) ListReconciliationItems(c *fiber.Ctx) error {
	return s.c.Admin.HandleReconciliation(c)
}
func (s *APIServer) RunReconciliationSweep(c *fiber.Ctx) error {
	return s.c.Admin.HandleRunSweep(c)
}
