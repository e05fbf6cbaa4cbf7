package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/TaskFox/internal/pkg/teams"
	"github.com/ManuelReschke/TaskFox/internal/pkg/usercontext"
)

// TodoController only creates todos; it exists to put the todo limit in front of a write.
type TodoController struct {
	repos     *repository.Repositories
	teams     *teams.Service
	evaluator *entitlements.Evaluator
}

func NewTodoController(repos *repository.Repositories, teamService *teams.Service, evaluator *entitlements.Evaluator) *TodoController {
	return &TodoController{repos: repos, teams: teamService, evaluator: evaluator}
}

type CreateTodoRequest struct {
	Title  string `json:"title" validate:"required,max=255"`
	TeamID *uint  `json:"team_id"`
}

func (tc *TodoController) HandleCreate(c *fiber.Ctx) error {
	var req CreateTodoRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	userID := usercontext.GetUserID(c)

	if req.TeamID != nil {
		team, err := tc.teams.GetTeam(ctx, *req.TeamID)
		if err != nil {
			return respondError(c, err)
		}
		if err := tc.teams.Authorize(ctx, team, userID, teams.ActionView); err != nil {
			return respondError(c, err)
		}
	}

	ok, err := tc.evaluator.CanCreateTodo(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return respondError(c, ErrLimitReached)
	}

	todo := &models.Todo{UserID: userID, TeamID: req.TeamID, Title: strings.TrimSpace(req.Title)}
	if err := tc.repos.Todo.Create(todo); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"todo": todo})
}
