package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/TaskFox/internal/pkg/teams"
	"github.com/ManuelReschke/TaskFox/internal/pkg/usercontext"
)

// TeamController runs every membership change as access control, then the
// plan limit, then the mutation.
type TeamController struct {
	repos     *repository.Repositories
	teams     *teams.Service
	evaluator *entitlements.Evaluator
}

func NewTeamController(repos *repository.Repositories, teamService *teams.Service, evaluator *entitlements.Evaluator) *TeamController {
	return &TeamController{repos: repos, teams: teamService, evaluator: evaluator}
}

type TeamRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=admin member viewer"`
}

type UpdateMemberRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member viewer"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin member viewer"`
}

// loadTeam resolves :id and checks that the caller may perform action.
func (tc *TeamController) loadTeam(c *fiber.Ctx, action teams.Action) (*models.Team, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	team, err := tc.teams.GetTeam(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if err := tc.teams.Authorize(c.UserContext(), team, usercontext.GetUserID(c), action); err != nil {
		return nil, err
	}
	return team, nil
}

// checkMemberLimit applies the team owner's plan, since the owner pays for the seats.
func (tc *TeamController) checkMemberLimit(c *fiber.Ctx, team *models.Team) error {
	ok, err := tc.evaluator.CanAddTeamMember(c.UserContext(), team, team.OwnerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLimitReached
	}
	return nil
}

func (tc *TeamController) HandleList(c *fiber.Ctx) error {
	list, err := tc.teams.ListForUser(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"teams": list})
}

func (tc *TeamController) HandleCreate(c *fiber.Ctx) error {
	var req TeamRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	team, err := tc.teams.CreateTeam(c.UserContext(), usercontext.GetUserID(c), req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"team": team})
}

func (tc *TeamController) HandleGet(c *fiber.Ctx) error {
	team, err := tc.loadTeam(c, teams.ActionView)
	if err != nil {
		return respondError(c, err)
	}
	role, err := tc.teams.RoleOf(c.UserContext(), team, usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"team": team, "role": role})
}

func (tc *TeamController) HandleUpdate(c *fiber.Ctx) error {
	team, err := tc.loadTeam(c, teams.ActionUpdate)
	if err != nil {
		return respondError(c, err)
	}
	var req TeamRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	updated, err := tc.teams.UpdateTeam(c.UserContext(), team, req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"team": updated})
}

func (tc *TeamController) HandleDelete(c *fiber.Ctx) error {
	team, err := tc.loadTeam(c, teams.ActionDelete)
	if err != nil {
		return respondError(c, err)
	}
	if err := tc.teams.DeleteTeam(c.UserContext(), team); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (tc *TeamController) HandleMembers(c *fiber.Ctx) error {
	team, err := tc.loadTeam(c, teams.ActionView)
	if err != nil {
		return respondError(c, err)
	}
	members, err := tc.teams.ListMembers(c.UserContext(), team)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"members": members})
}

func (tc *TeamController) HandleAddMember(c *fiber.Ctx) error {
	team, err := tc.loadTeam(c, teams.ActionManageMembers)
	if err != nil {
		return respondError(c, err)
	}
	var req AddMemberRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if _, err := tc.repos.User.GetByID(req.UserID); err != nil {
		return respondError(c, notFoundUser(err))
	}
	return tc.addMember(c, team, req.UserID, req.Role, true)
}

func (tc *TeamController) HandleInvite(c *fiber.Ctx) error {
	team, err := tc.loadTeam(c, teams.ActionInvite)
	if err != nil {
		return respondError(c, err)
	}
	var req InviteRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	invited, err := tc.repos.User.GetByEmail(req.Email)
	if err != nil {
		return respondError(c, notFoundUser(err))
	}
	return tc.addMember(c, team, invited.ID, req.Role, true)
}

// HandleJoin lets the caller join a team as a plain member.
func (tc *TeamController) HandleJoin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	team, err := tc.teams.GetTeam(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return tc.addMember(c, team, usercontext.GetUserID(c), models.TeamRoleMember, false)
}

func (tc *TeamController) addMember(c *fiber.Ctx, team *models.Team, userID uint, role string, invited bool) error {
	ctx := c.UserContext()
	isMember, err := tc.teams.HasMember(ctx, team, userID)
	if err != nil {
		return respondError(c, err)
	}
	if isMember {
		return respondError(c, teams.ErrAlreadyMember)
	}
	if err := tc.checkMemberLimit(c, team); err != nil {
		return respondError(c, err)
	}

	var invitedBy *uint
	if invited {
		actor := usercontext.GetUserID(c)
		invitedBy = &actor
	}
	member, err := tc.teams.AddMember(ctx, team, userID, role, invitedBy)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"member": member})
}

func (tc *TeamController) HandleUpdateMember(c *fiber.Ctx) error {
	team, err := tc.loadTeam(c, teams.ActionManageMembers)
	if err != nil {
		return respondError(c, err)
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateMemberRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	member, err := tc.teams.UpdateMemberRole(c.UserContext(), team, userID, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"member": member})
}

func (tc *TeamController) HandleRemoveMember(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.UserContext()
	team, err := tc.teams.GetTeam(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if err := tc.teams.AuthorizeRemoval(ctx, team, usercontext.GetUserID(c), userID); err != nil {
		return respondError(c, err)
	}
	if err := tc.teams.RemoveMember(ctx, team, userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (tc *TeamController) HandleStatistics(c *fiber.Ctx) error {
	team, err := tc.loadTeam(c, teams.ActionView)
	if err != nil {
		return respondError(c, err)
	}
	stats, err := tc.teams.Statistics(c.UserContext(), team)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"statistics": stats})
}

func notFoundUser(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
