package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamMemberRoles(t *testing.T) {
	for _, role := range []string{TeamRoleOwner, TeamRoleAdmin, TeamRoleMember, TeamRoleViewer} {
		m := &TeamMember{Role: role}
		assert.NoError(t, m.BeforeSave(nil), role)
	}

	for _, role := range []string{"", "Owner", "superadmin", "owner "} {
		m := &TeamMember{Role: role}
		assert.ErrorIs(t, m.BeforeSave(nil), ErrInvalidTeamRole, role)
	}

	assert.False(t, IsAssignableTeamRole(TeamRoleOwner))
	assert.True(t, IsAssignableTeamRole(TeamRoleViewer))
}

func TestTeamIsOwnedBy(t *testing.T) {
	team := &Team{OwnerID: 7}
	assert.True(t, team.IsOwnedBy(7))
	assert.False(t, team.IsOwnedBy(8))
	assert.False(t, team.IsOwnedBy(0))
	var nilTeam *Team
	assert.False(t, nilTeam.IsOwnedBy(7))
}
