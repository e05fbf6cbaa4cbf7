package repository

import (
	"context"

	"github.com/ManuelReschke/TaskFox/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	SetProviderCustomerID(userID uint, customerID string) error
	TouchLastLogin(userID uint) error
}

// SettingsRepository defines the interface for per-user settings and API keys
type SettingsRepository interface {
	GetOrCreate(userID uint) (*models.UserSettings, error)
	Save(settings *models.UserSettings) error
	TouchAPIKeyUsage(settingsID uint) error
}

// PlanRepository defines the interface for the subscription plan catalog
type PlanRepository interface {
	Create(plan *models.SubscriptionPlan) error
	Save(plan *models.SubscriptionPlan) error
	GetByID(id uint) (*models.SubscriptionPlan, error)
	GetBySlug(slug string) (*models.SubscriptionPlan, error)
	ListActive() ([]models.SubscriptionPlan, error)
	Count() (int64, error)
}

// SubscriptionRepository defines the interface for user subscriptions
type SubscriptionRepository interface {
	Create(sub *models.UserSubscription) error
	Save(sub *models.UserSubscription) error
	GetByUserID(userID uint) (*models.UserSubscription, error)
	GetByProviderSubscriptionID(providerSubscriptionID string) (*models.UserSubscription, error)
}

// TeamRepository defines the interface for teams
type TeamRepository interface {
	Create(team *models.Team) error
	GetByID(id uint) (*models.Team, error)
	Update(team *models.Team) error
	Delete(id uint) error
	ListForUser(userID uint) ([]models.Team, error)
	CountOwnedBy(userID uint) (int64, error)
}

// TeamMemberRepository defines the interface for team memberships
type TeamMemberRepository interface {
	Create(member *models.TeamMember) error
	Get(teamID, userID uint) (*models.TeamMember, error)
	Exists(teamID, userID uint) (bool, error)
	UpdateRole(teamID, userID uint, role string) error
	Delete(teamID, userID uint) error
	ListByTeam(teamID uint) ([]models.TeamMember, error)
	CountByTeam(teamID uint) (int64, error)
}

// TodoRepository defines the interface for the todo counts the entitlement layer needs
type TodoRepository interface {
	Create(todo *models.Todo) error
	CountByUserID(userID uint) (int64, error)
	CountByTeam(teamID uint) (int64, error)
	CountCompletedByTeam(teamID uint) (int64, error)
}

// WebhookEventRepository defines the interface for persisted billing webhook events
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkProcessed(id uint) error
}

// ReconciliationRepository defines the interface for open billing follow-ups
type ReconciliationRepository interface {
	Create(item *models.BillingReconciliationItem) error
	Save(item *models.BillingReconciliationItem) error
	ListOpen(limit int) ([]models.BillingReconciliationItem, error)
	CountOpen() (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	db *gorm.DB

	User           UserRepository
	Settings       SettingsRepository
	Plan           PlanRepository
	Subscription   SubscriptionRepository
	Team           TeamRepository
	TeamMember     TeamMemberRepository
	Todo           TodoRepository
	WebhookEvent   WebhookEventRepository
	Reconciliation ReconciliationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:             db,
		User:           NewUserRepository(db),
		Settings:       NewSettingsRepository(db),
		Plan:           NewPlanRepository(db),
		Subscription:   NewSubscriptionRepository(db),
		Team:           NewTeamRepository(db),
		TeamMember:     NewTeamMemberRepository(db),
		Todo:           NewTodoRepository(db),
		WebhookEvent:   NewWebhookEventRepository(db),
		Reconciliation: NewReconciliationRepository(db),
	}
}

// Transaction runs fn against repositories bound to a single database
// transaction. Returning an error or panicking inside fn rolls back every
// write made through tx.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(NewRepositories(db))
	})
}
