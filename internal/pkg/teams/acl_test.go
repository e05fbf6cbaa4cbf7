package teams

import (
	"context"
	"testing"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeMatrix(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	owner := createUser(t, repos, "owner@example.com")
	admin := createUser(t, repos, "admin@example.com")
	member := createUser(t, repos, "member@example.com")
	viewer := createUser(t, repos, "viewer@example.com")
	outsider := createUser(t, repos, "outsider@example.com")

	team, err := svc.CreateTeam(ctx, owner.ID, "ACL", "")
	require.NoError(t, err)
	for id, role := range map[uint]string{admin.ID: models.TeamRoleAdmin, member.ID: models.TeamRoleMember, viewer.ID: models.TeamRoleViewer} {
		_, err := svc.AddMember(ctx, team, id, role, &owner.ID)
		require.NoError(t, err)
	}

	allowed := map[Action][]uint{
		ActionView:          {owner.ID, admin.ID, member.ID, viewer.ID},
		ActionUpdate:        {owner.ID, admin.ID},
		ActionManageMembers: {owner.ID, admin.ID},
		ActionInvite:        {owner.ID, admin.ID},
		ActionDelete:        {owner.ID},
	}
	everyone := []uint{owner.ID, admin.ID, member.ID, viewer.ID, outsider.ID}

	for action, ids := range allowed {
		for _, actor := range everyone {
			err := svc.Authorize(ctx, team, actor, action)
			if contains(ids, actor) {
				assert.NoError(t, err, "actor %d action %s", actor, action)
			} else {
				assert.ErrorIs(t, err, ErrForbidden, "actor %d action %s", actor, action)
			}
		}
	}

	assert.ErrorIs(t, svc.Authorize(ctx, team, owner.ID, Action("archive")), ErrForbidden)
}

func TestOwnerWithoutMembershipRowKeepsOwnerRights(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	owner := createUser(t, repos, "owner@example.com")

	team, err := svc.CreateTeam(ctx, owner.ID, "Orphan rows", "")
	require.NoError(t, err)
	require.NoError(t, repos.TeamMember.Delete(team.ID, owner.ID))

	ok, err := svc.HasMember(ctx, team, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	role, err := svc.RoleOf(ctx, team, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleOwner, role)
	assert.NoError(t, svc.Authorize(ctx, team, owner.ID, ActionDelete))
	assert.NoError(t, svc.Authorize(ctx, team, owner.ID, ActionManageMembers))
}

func TestPredicates(t *testing.T) {
	svc, repos := setup(t)
	ctx := context.Background()
	owner := createUser(t, repos, "owner@example.com")
	admin := createUser(t, repos, "admin@example.com")
	outsider := createUser(t, repos, "outsider@example.com")
	team, err := svc.CreateTeam(ctx, owner.ID, "Predicates", "")
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, team, admin.ID, models.TeamRoleAdmin, nil)
	require.NoError(t, err)

	assert.True(t, svc.IsOwner(team, owner.ID))
	assert.False(t, svc.IsOwner(team, admin.ID))

	isAdmin, err := svc.IsAdmin(ctx, team, owner.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin, "owner is not an admin by membership")

	access, err := svc.HasAdminAccess(ctx, team, owner.ID)
	require.NoError(t, err)
	assert.True(t, access)

	role, err := svc.RoleOf(ctx, team, outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, role)

	// admins can remove others, outsiders only themselves
	assert.NoError(t, svc.AuthorizeRemoval(ctx, team, admin.ID, outsider.ID))
	assert.ErrorIs(t, svc.AuthorizeRemoval(ctx, team, outsider.ID, admin.ID), ErrForbidden)
	assert.NoError(t, svc.AuthorizeRemoval(ctx, team, outsider.ID, outsider.ID))
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
