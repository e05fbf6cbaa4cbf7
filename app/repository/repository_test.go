package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/internal/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	return NewRepositories(testutil.NewDB(t))
}

func createUser(t *testing.T, repos *Repositories, email string) *models.User {
	t.Helper()
	u, err := models.CreateUser("Test User", email, "password123")
	require.NoError(t, err)
	require.NoError(t, repos.User.Create(u))
	return u
}

func TestPlanRepositoryListActiveOrdersByPrice(t *testing.T) {
	repos := newTestRepos(t)

	for _, p := range []models.SubscriptionPlan{
		{Slug: "team", Name: "Team", Price: decimal.RequireFromString("29.00"), Currency: "usd", Interval: models.PlanIntervalMonthly, IsActive: true},
		{Slug: "free", Name: "Free", Price: decimal.Zero, Currency: "usd", Interval: models.PlanIntervalMonthly, IsActive: true},
		{Slug: "pro", Name: "Pro", Price: decimal.RequireFromString("9.99"), Currency: "usd", Interval: models.PlanIntervalMonthly, IsActive: true},
		{Slug: "legacy", Name: "Legacy", Price: decimal.RequireFromString("1.00"), Currency: "usd", Interval: models.PlanIntervalMonthly, IsActive: true},
	} {
		plan := p
		require.NoError(t, repos.Plan.Create(&plan))
	}
	legacy, err := repos.Plan.GetBySlug("legacy")
	require.NoError(t, err)
	legacy.IsActive = false
	require.NoError(t, repos.Plan.Save(legacy))

	plans, err := repos.Plan.ListActive()
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "free", plans[0].Slug)
	assert.Equal(t, "pro", plans[1].Slug)
	assert.Equal(t, "team", plans[2].Slug)

	// inactive plans stay reachable by id for existing subscriptions
	got, err := repos.Plan.GetByID(legacy.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = repos.Plan.GetByID(9999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestSubscriptionRepositoryLookups(t *testing.T) {
	repos := newTestRepos(t)
	u := createUser(t, repos, "sub@example.com")

	now := time.Now().UTC()
	extID := "sub_ext_1"
	sub := &models.UserSubscription{
		UserID:                 u.ID,
		PlanID:                 1,
		ProviderSubscriptionID: &extID,
		Status:                 models.SubscriptionStatusActive,
		CurrentPeriodStart:     now,
		CurrentPeriodEnd:       now.AddDate(0, 1, 0),
	}
	require.NoError(t, repos.Subscription.Create(sub))

	byUser, err := repos.Subscription.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, byUser.ID)

	byExt, err := repos.Subscription.GetByProviderSubscriptionID(extID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byExt.UserID)

	_, err = repos.Subscription.GetByProviderSubscriptionID("")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// a second row for the same user violates the one-subscription-per-user constraint
	dup := &models.UserSubscription{UserID: u.ID, PlanID: 1, Status: models.SubscriptionStatusActive, CurrentPeriodStart: now, CurrentPeriodEnd: now}
	assert.Error(t, repos.Subscription.Create(dup))

	// the status enum is enforced on every write
	byUser.Status = "bogus"
	assert.ErrorIs(t, repos.Subscription.Save(byUser), models.ErrInvalidSubscriptionStatus)
}

func TestTeamMemberRepository(t *testing.T) {
	repos := newTestRepos(t)
	owner := createUser(t, repos, "owner@example.com")
	member := createUser(t, repos, "member@example.com")

	team := &models.Team{Name: "Core", OwnerID: owner.ID}
	require.NoError(t, repos.Team.Create(team))

	now := time.Now()
	require.NoError(t, repos.TeamMember.Create(&models.TeamMember{TeamID: team.ID, UserID: member.ID, Role: models.TeamRoleViewer, InvitedAt: now, JoinedAt: now}))

	ok, err := repos.TeamMember.Exists(team.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// exactly one row per (team, user)
	assert.Error(t, repos.TeamMember.Create(&models.TeamMember{TeamID: team.ID, UserID: member.ID, Role: models.TeamRoleAdmin}))

	require.NoError(t, repos.TeamMember.UpdateRole(team.ID, member.ID, models.TeamRoleAdmin))
	m, err := repos.TeamMember.Get(team.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleAdmin, m.Role)

	assert.ErrorIs(t, repos.TeamMember.UpdateRole(team.ID, member.ID, "root"), models.ErrInvalidTeamRole)

	teams, err := repos.Team.ListForUser(member.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, team.ID, teams[0].ID)

	count, err := repos.TeamMember.CountByTeam(team.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repos.TeamMember.Delete(team.ID, member.ID))
	assert.ErrorIs(t, repos.TeamMember.Delete(team.ID, member.ID), gorm.ErrRecordNotFound)
}

func TestTeamRepositorySoftDeleteAndOwnerImmutable(t *testing.T) {
	repos := newTestRepos(t)
	owner := createUser(t, repos, "o@example.com")
	other := createUser(t, repos, "x@example.com")

	team := &models.Team{Name: "Old", OwnerID: owner.ID}
	require.NoError(t, repos.Team.Create(team))

	team.Name = "New"
	team.OwnerID = other.ID
	require.NoError(t, repos.Team.Update(team))

	got, err := repos.Team.GetByID(team.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, owner.ID, got.OwnerID)

	require.NoError(t, repos.Team.Delete(team.ID))
	_, err = repos.Team.GetByID(team.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	owned, err := repos.Team.CountOwnedBy(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), owned)
}

func TestWebhookEventRepositoryDeduplicates(t *testing.T) {
	repos := newTestRepos(t)

	event := &models.BillingWebhookEvent{Provider: "stripe", ProviderEventID: "evt_1", EventType: "subscription.updated", ReceivedAt: time.Now()}
	created, stored, err := repos.WebhookEvent.CreateIfNotExists(event)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotZero(t, stored.ID)

	again := &models.BillingWebhookEvent{Provider: "stripe", ProviderEventID: "evt_1", EventType: "subscription.updated", ReceivedAt: time.Now()}
	created, dup, err := repos.WebhookEvent.CreateIfNotExists(again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, dup.ID)

	require.NoError(t, repos.WebhookEvent.MarkProcessed(stored.ID))
}

func TestReconciliationRepositoryOpenItems(t *testing.T) {
	repos := newTestRepos(t)

	require.NoError(t, repos.Reconciliation.Create(&models.BillingReconciliationItem{Kind: models.ReconcileOrphanedSubscription, UserID: 1, ProviderSubscriptionID: "sub_a"}))
	require.NoError(t, repos.Reconciliation.Create(&models.BillingReconciliationItem{Kind: models.ReconcileCancelDrift, UserID: 2, ProviderSubscriptionID: "sub_b"}))

	open, err := repos.Reconciliation.ListOpen(10)
	require.NoError(t, err)
	require.Len(t, open, 2)

	now := time.Now()
	open[0].ResolvedAt = &now
	require.NoError(t, repos.Reconciliation.Save(&open[0]))

	count, err := repos.Reconciliation.CountOpen()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	repos := newTestRepos(t)
	boom := errors.New("boom")

	err := repos.Transaction(context.Background(), func(tx *Repositories) error {
		u, err := models.CreateUser("Rolled Back", "rb@example.com", "password123")
		require.NoError(t, err)
		require.NoError(t, tx.User.Create(u))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.User.GetByEmail("rb@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTransactionCommits(t *testing.T) {
	repos := newTestRepos(t)

	err := repos.Transaction(context.Background(), func(tx *Repositories) error {
		u, err := models.CreateUser("Committed", "ok@example.com", "password123")
		if err != nil {
			return err
		}
		return tx.User.Create(u)
	})
	require.NoError(t, err)

	u, err := repos.User.GetByEmail("OK@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Committed", u.Name)
}

func TestUserRepositoryAPIKeyLookup(t *testing.T) {
	repos := newTestRepos(t)
	u := createUser(t, repos, "key@example.com")

	settings, err := repos.Settings.GetOrCreate(u.ID)
	require.NoError(t, err)
	raw, err := settings.IssueAPIKey()
	require.NoError(t, err)
	require.NoError(t, repos.Settings.Save(settings))

	got, gotSettings, err := repos.User.GetByAPIKeyHash(models.HashAPIKey(raw))
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, settings.ID, gotSettings.ID)

	settings.RevokeAPIKey()
	require.NoError(t, repos.Settings.Save(settings))
	_, _, err = repos.User.GetByAPIKeyHash(models.HashAPIKey(raw))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repos.User.SetProviderCustomerID(u.ID, "cus_1"))
	got, err = repos.User.GetByID(u.ID)
	require.NoError(t, err)
	assert.True(t, got.HasBillingCustomer())
}
