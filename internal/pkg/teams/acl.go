package teams

import (
	"context"
	"errors"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"gorm.io/gorm"
)

// Action is a team-scoped operation guarded by Authorize.
type Action string

const (
	ActionView          Action = "view"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionManageMembers Action = "manage_members"
	ActionInvite        Action = "invite"
)

// IsOwner compares against Team.OwnerID only; membership rows are not consulted.
func (s *Service) IsOwner(team *models.Team, userID uint) bool {
	return team.IsOwnedBy(userID)
}

// IsAdmin reports whether userID holds the admin role through a membership row.
func (s *Service) IsAdmin(ctx context.Context, team *models.Team, userID uint) (bool, error) {
	role, err := roleOf(s.repos, team.ID, userID)
	if err != nil {
		return false, err
	}
	return role == models.TeamRoleAdmin, nil
}

// HasMember is true for the owner and for anyone with a membership row.
func (s *Service) HasMember(ctx context.Context, team *models.Team, userID uint) (bool, error) {
	return hasMember(s.repos, team, userID)
}

// RoleOf returns the effective role, "owner" for the owner regardless of the
// membership table, or "" when userID does not belong to the team.
func (s *Service) RoleOf(ctx context.Context, team *models.Team, userID uint) (string, error) {
	if team.IsOwnedBy(userID) {
		return models.TeamRoleOwner, nil
	}
	return roleOf(s.repos, team.ID, userID)
}

// HasAdminAccess is IsOwner or IsAdmin.
func (s *Service) HasAdminAccess(ctx context.Context, team *models.Team, userID uint) (bool, error) {
	if team.IsOwnedBy(userID) {
		return true, nil
	}
	return s.IsAdmin(ctx, team, userID)
}

// Authorize returns ErrForbidden unless actorID may perform action on team.
func (s *Service) Authorize(ctx context.Context, team *models.Team, actorID uint, action Action) error {
	var (
		allowed bool
		err     error
	)
	switch action {
	case ActionView:
		allowed, err = s.HasMember(ctx, team, actorID)
	case ActionUpdate, ActionManageMembers, ActionInvite:
		allowed, err = s.HasAdminAccess(ctx, team, actorID)
	case ActionDelete:
		allowed = s.IsOwner(team, actorID)
	}
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

// AuthorizeRemoval permits admins to remove others and anyone to remove
// themselves. The owner is still rejected later by RemoveMember.
func (s *Service) AuthorizeRemoval(ctx context.Context, team *models.Team, actorID, targetID uint) error {
	if actorID != 0 && actorID == targetID {
		return nil
	}
	return s.Authorize(ctx, team, actorID, ActionManageMembers)
}

func hasMember(repos *repository.Repositories, team *models.Team, userID uint) (bool, error) {
	if team.IsOwnedBy(userID) {
		return true, nil
	}
	return repos.TeamMember.Exists(team.ID, userID)
}

func roleOf(repos *repository.Repositories, teamID, userID uint) (string, error) {
	member, err := repos.TeamMember.Get(teamID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return member.Role, nil
}
