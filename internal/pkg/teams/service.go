package teams

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/logging"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service owns teams and their memberships. It never checks who is calling;
// callers run Authorize first and pass the acting user explicitly.
type Service struct {
	repos *repository.Repositories
	now   func() time.Time
	log   logrus.FieldLogger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repos *repository.Repositories, opts ...Option) *Service {
	s := &Service{repos: repos, now: time.Now, log: logging.Component("teams")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Statistics summarises a team for its members.
type Statistics struct {
	Members        int64 `json:"members"`
	Todos          int64 `json:"todos"`
	CompletedTodos int64 `json:"completed_todos"`
}

// CreateTeam creates a team owned by ownerID together with the owner's membership row.
func (s *Service) CreateTeam(ctx context.Context, ownerID uint, name, description string) (*models.Team, error) {
	team := &models.Team{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
	}
	if err := team.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Team.Create(team); err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		return tx.TeamMember.Create(&models.TeamMember{
			TeamID:    team.ID,
			UserID:    ownerID,
			Role:      models.TeamRoleOwner,
			InvitedAt: now,
			JoinedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"team_id": team.ID, "owner_id": ownerID}).Info("team created")
	return team, nil
}

func (s *Service) GetTeam(ctx context.Context, teamID uint) (*models.Team, error) {
	team, err := s.repos.Team.GetByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// UpdateTeam changes name and description. The owner is immutable.
func (s *Service) UpdateTeam(ctx context.Context, team *models.Team, name, description string) (*models.Team, error) {
	updated := *team
	updated.Name = strings.TrimSpace(name)
	updated.Description = strings.TrimSpace(description)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos.Team.Update(&updated); err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}
	return &updated, nil
}

// DeleteTeam soft-deletes the team; memberships stay for auditing.
func (s *Service) DeleteTeam(ctx context.Context, team *models.Team) error {
	if err := s.repos.Team.Delete(team.ID); err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	s.log.WithField("team_id", team.ID).Info("team deleted")
	return nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Team, error) {
	return s.repos.Team.ListForUser(userID)
}

func (s *Service) ListMembers(ctx context.Context, team *models.Team) ([]models.TeamMember, error) {
	return s.repos.TeamMember.ListByTeam(team.ID)
}

// AddMember inserts a membership stamped as invited and joined now. There is
// no pending invitation state and no role change through re-adding.
func (s *Service) AddMember(ctx context.Context, team *models.Team, userID uint, role string, invitedBy *uint) (*models.TeamMember, error) {
	if !models.IsAssignableTeamRole(role) {
		return nil, ErrInvalidRole
	}

	var member *models.TeamMember
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		isMember, err := hasMember(tx, team, userID)
		if err != nil {
			return err
		}
		if isMember {
			return ErrAlreadyMember
		}

		now := s.now()
		member = &models.TeamMember{
			TeamID:    team.ID,
			UserID:    userID,
			Role:      role,
			InvitedBy: invitedBy,
			InvitedAt: now,
			JoinedAt:  now,
		}
		if err := tx.TeamMember.Create(member); err != nil {
			return fmt.Errorf("add member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"team_id": team.ID, "user_id": userID, "role": role}).Info("team member added")
	return member, nil
}

// RemoveMember deletes the membership. The owner can never be removed.
func (s *Service) RemoveMember(ctx context.Context, team *models.Team, userID uint) error {
	if team.IsOwnedBy(userID) {
		return ErrCannotRemoveOwner
	}
	if err := s.repos.TeamMember.Delete(team.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("remove member: %w", err)
	}

	s.log.WithFields(logrus.Fields{"team_id": team.ID, "user_id": userID}).Info("team member removed")
	return nil
}

// UpdateMemberRole changes a member's role to admin, member or viewer.
func (s *Service) UpdateMemberRole(ctx context.Context, team *models.Team, userID uint, role string) (*models.TeamMember, error) {
	if team.IsOwnedBy(userID) {
		return nil, ErrCannotChangeOwnerRole
	}
	if !models.IsAssignableTeamRole(role) {
		return nil, ErrInvalidRole
	}

	var member *models.TeamMember
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.TeamMember.UpdateRole(team.ID, userID, role); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotMember
			}
			return fmt.Errorf("update member role: %w", err)
		}
		var err error
		member, err = tx.TeamMember.Get(team.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Service) Statistics(ctx context.Context, team *models.Team) (*Statistics, error) {
	members, err := s.repos.TeamMember.CountByTeam(team.ID)
	if err != nil {
		return nil, err
	}
	todos, err := s.repos.Todo.CountByTeam(team.ID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repos.Todo.CountCompletedByTeam(team.ID)
	if err != nil {
		return nil, err
	}
	return &Statistics{Members: members, Todos: todos, CompletedTodos: completed}, nil
}
