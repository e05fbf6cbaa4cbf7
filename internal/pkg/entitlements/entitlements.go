package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/metrics"
	"gorm.io/gorm"
)

// Limits applied to users without an active subscription, regardless of how
// the free plan is configured in the catalog.
const (
	FreeTierMaxTodos       = 50
	FreeTierMaxTeamMembers = 1
)

const (
	KindTodos       = "todos"
	KindTeamMembers = "team_members"
)

// Evaluator answers "may this user do X" from subscription, plan and current usage.
// Checks are not atomic with the create they guard; concurrent requests may
// overshoot a limit by one.
type Evaluator struct {
	repos   *repository.Repositories
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Evaluator)

func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

func NewEvaluator(repos *repository.Repositories, opts ...Option) *Evaluator {
	e := &Evaluator{repos: repos, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Quota describes one limited resource. Limit is nil when unlimited.
type Quota struct {
	Used      int64 `json:"used"`
	Limit     *int  `json:"limit"`
	Unlimited bool  `json:"unlimited"`
}

// Remaining returns how many more units fit; -1 means unlimited.
func (q Quota) Remaining() int64 {
	if q.Unlimited || q.Limit == nil {
		return -1
	}
	if r := int64(*q.Limit) - q.Used; r > 0 {
		return r
	}
	return 0
}

// Usage is the per-user summary shown on the subscription page.
type Usage struct {
	PlanSlug string `json:"plan"`
	Todos    Quota  `json:"todos"`
	Teams    Quota  `json:"teams"`
}

// CanCreateTodo reports whether userID may create one more todo.
func (e *Evaluator) CanCreateTodo(ctx context.Context, userID uint) (bool, error) {
	limit, unlimited, err := e.todoLimit(ctx, userID)
	if err != nil {
		return false, err
	}
	if unlimited {
		return true, nil
	}
	count, err := e.repos.Todo.CountByUserID(userID)
	if err != nil {
		return false, fmt.Errorf("count todos: %w", err)
	}
	allowed := count < int64(limit)
	if !allowed {
		e.metrics.ObserveEntitlementDenial(KindTodos)
	}
	return allowed, nil
}

// CanAddTeamMember reports whether team may grow by one member. userID is the
// account whose plan governs the team, normally the team owner.
func (e *Evaluator) CanAddTeamMember(ctx context.Context, team *models.Team, userID uint) (bool, error) {
	limit, unlimited, err := e.teamMemberLimit(ctx, userID)
	if err != nil {
		return false, err
	}
	if unlimited {
		return true, nil
	}
	count, err := e.repos.TeamMember.CountByTeam(team.ID)
	if err != nil {
		return false, fmt.Errorf("count team members: %w", err)
	}
	allowed := count < int64(limit)
	if !allowed {
		e.metrics.ObserveEntitlementDenial(KindTeamMembers)
	}
	return allowed, nil
}

// HasFeature reports whether the user's active plan carries feature.
func (e *Evaluator) HasFeature(ctx context.Context, userID uint, feature string) (bool, error) {
	plan, err := e.activePlan(ctx, userID)
	if err != nil || plan == nil {
		return false, err
	}
	return plan.HasFeature(feature), nil
}

// Usage reports todo usage and owned teams against the applicable limits.
func (e *Evaluator) Usage(ctx context.Context, userID uint) (*Usage, error) {
	plan, err := e.activePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	todos, err := e.repos.Todo.CountByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("count todos: %w", err)
	}
	teams, err := e.repos.Team.CountOwnedBy(userID)
	if err != nil {
		return nil, fmt.Errorf("count teams: %w", err)
	}

	u := &Usage{Todos: Quota{Used: todos}, Teams: Quota{Used: teams}}
	if plan == nil {
		u.Todos.Limit = models.IntPtr(FreeTierMaxTodos)
		u.Teams.Limit = models.IntPtr(FreeTierMaxTeamMembers)
		return u, nil
	}

	u.PlanSlug = plan.Slug
	if limit, ok := plan.MaxTodosLimit(); ok {
		u.Todos.Limit = models.IntPtr(limit)
	} else {
		u.Todos.Unlimited = true
	}
	if limit, ok := plan.MaxTeamMembersLimit(); ok {
		u.Teams.Limit = models.IntPtr(limit)
	} else {
		u.Teams.Unlimited = true
	}
	return u, nil
}

func (e *Evaluator) todoLimit(ctx context.Context, userID uint) (int, bool, error) {
	plan, err := e.activePlan(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if plan == nil {
		return FreeTierMaxTodos, false, nil
	}
	limit, ok := plan.MaxTodosLimit()
	return limit, !ok, nil
}

func (e *Evaluator) teamMemberLimit(ctx context.Context, userID uint) (int, bool, error) {
	plan, err := e.activePlan(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if plan == nil {
		return FreeTierMaxTeamMembers, false, nil
	}
	limit, ok := plan.MaxTeamMembersLimit()
	return limit, !ok, nil
}

// activePlan returns nil without error when the user has no active subscription.
func (e *Evaluator) activePlan(ctx context.Context, userID uint) (*models.SubscriptionPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub, err := e.repos.Subscription.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if !sub.IsActiveAt(e.now()) {
		return nil, nil
	}
	plan, err := e.repos.Plan.GetByID(sub.PlanID)
	if err != nil {
		return nil, fmt.Errorf("load plan %d for subscription %d: %w", sub.PlanID, sub.ID, err)
	}
	return plan, nil
}
