package teams

import (
	"context"
	"testing"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()
	repos := repository.NewRepositories(testutil.NewDB(t))
	return NewService(repos), repos
}

func createUser(t *testing.T, repos *repository.Repositories, email string) *models.User {
	t.Helper()
	u, err := models.CreateUser("Team User", email, "password123")
	require.NoError(t, err)
	require.NoError(t, repos.User.Create(u))
	return u
}

func TestCreateTeamAddsOwnerMembership(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	owner := createUser(t, repos, "owner@example.com")

	team, err := svc.CreateTeam(ctx, owner.ID, "  Platform  ", "infra folks")
	require.NoError(t, err)
	assert.Equal(t, "Platform", team.Name)
	assert.Equal(t, owner.ID, team.OwnerID)

	members, err := svc.ListMembers(ctx, team)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].UserID)
	assert.Equal(t, models.TeamRoleOwner, members[0].Role)

	_, err = svc.CreateTeam(ctx, owner.ID, "", "")
	assert.Error(t, err, "name is required")
}

func TestTeamMembershipScenario(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	u1 := createUser(t, repos, "u1@example.com")
	u2 := createUser(t, repos, "u2@example.com")

	team, err := svc.CreateTeam(ctx, u1.ID, "Scenario", "")
	require.NoError(t, err)

	require.NoError(t, svc.Authorize(ctx, team, u1.ID, ActionManageMembers))
	_, err = svc.AddMember(ctx, team, u2.ID, models.TeamRoleViewer, &u1.ID)
	require.NoError(t, err)

	ok, err := svc.HasMember(ctx, team, u2.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// u2 tries to remove the owner
	require.Error(t, svc.AuthorizeRemoval(ctx, team, u2.ID, u1.ID))
	assert.ErrorIs(t, svc.RemoveMember(ctx, team, u1.ID), ErrCannotRemoveOwner)

	// u2 removes themselves
	require.NoError(t, svc.AuthorizeRemoval(ctx, team, u2.ID, u2.ID))
	require.NoError(t, svc.RemoveMember(ctx, team, u2.ID))

	ok, err = svc.HasMember(ctx, team, u2.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddMember(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	owner := createUser(t, repos, "o@example.com")
	u := createUser(t, repos, "m@example.com")
	team, err := svc.CreateTeam(ctx, owner.ID, "Adders", "")
	require.NoError(t, err)

	m, err := svc.AddMember(ctx, team, u.ID, models.TeamRoleMember, &owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleMember, m.Role)
	require.NotNil(t, m.InvitedBy)
	assert.Equal(t, owner.ID, *m.InvitedBy)
	assert.Equal(t, m.InvitedAt, m.JoinedAt)

	// re-adding never upgrades the role
	_, err = svc.AddMember(ctx, team, u.ID, models.TeamRoleAdmin, nil)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	role, err := svc.RoleOf(ctx, team, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleMember, role)

	_, err = svc.AddMember(ctx, team, owner.ID, models.TeamRoleMember, nil)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	other := createUser(t, repos, "x@example.com")
	for _, role := range []string{models.TeamRoleOwner, "superuser", ""} {
		_, err = svc.AddMember(ctx, team, other.ID, role, nil)
		assert.ErrorIs(t, err, ErrInvalidRole, role)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	owner := createUser(t, repos, "o@example.com")
	u := createUser(t, repos, "m@example.com")
	stranger := createUser(t, repos, "s@example.com")
	team, err := svc.CreateTeam(ctx, owner.ID, "Roles", "")
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, team, u.ID, models.TeamRoleViewer, nil)
	require.NoError(t, err)

	m, err := svc.UpdateMemberRole(ctx, team, u.ID, models.TeamRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleAdmin, m.Role)

	isAdmin, err := svc.IsAdmin(ctx, team, u.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	_, err = svc.UpdateMemberRole(ctx, team, owner.ID, models.TeamRoleMember)
	assert.ErrorIs(t, err, ErrCannotChangeOwnerRole)

	_, err = svc.UpdateMemberRole(ctx, team, u.ID, models.TeamRoleOwner)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.UpdateMemberRole(ctx, team, stranger.ID, models.TeamRoleMember)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestRemoveMemberNotMember(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	owner := createUser(t, repos, "o@example.com")
	team, err := svc.CreateTeam(ctx, owner.ID, "Removers", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveMember(ctx, team, 999), ErrNotMember)
}

func TestTeamCRUD(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	owner := createUser(t, repos, "o@example.com")
	member := createUser(t, repos, "m@example.com")

	team, err := svc.CreateTeam(ctx, owner.ID, "First", "")
	require.NoError(t, err)
	_, err = svc.CreateTeam(ctx, member.ID, "Second", "")
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, team, member.ID, models.TeamRoleMember, nil)
	require.NoError(t, err)

	updated, err := svc.UpdateTeam(ctx, team, "Renamed", "new description")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, updated.OwnerID)

	loaded, err := svc.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Name)
	assert.Equal(t, "new description", loaded.Description)

	ownerTeams, err := svc.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, ownerTeams, 1)
	memberTeams, err := svc.ListForUser(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, memberTeams, 2)

	require.NoError(t, svc.DeleteTeam(ctx, loaded))
	_, err = svc.GetTeam(ctx, team.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestStatistics(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	owner := createUser(t, repos, "o@example.com")
	u := createUser(t, repos, "m@example.com")
	team, err := svc.CreateTeam(ctx, owner.ID, "Stats", "")
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, team, u.ID, models.TeamRoleMember, nil)
	require.NoError(t, err)

	require.NoError(t, repos.Todo.Create(&models.Todo{UserID: owner.ID, TeamID: &team.ID, Title: "a"}))
	require.NoError(t, repos.Todo.Create(&models.Todo{UserID: u.ID, TeamID: &team.ID, Title: "b", Completed: true}))
	require.NoError(t, repos.Todo.Create(&models.Todo{UserID: u.ID, Title: "personal"}))

	stats, err := svc.Statistics(ctx, team)
	require.NoError(t, err)
	assert.Equal(t, &Statistics{Members: 2, Todos: 2, CompletedTodos: 1}, stats)
}
