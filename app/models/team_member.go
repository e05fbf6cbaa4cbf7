package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	TeamRoleOwner  = "owner"
	TeamRoleAdmin  = "admin"
	TeamRoleMember = "member"
	TeamRoleViewer = "viewer"
)

var ErrInvalidTeamRole = errors.New("invalid team role")

// TeamMember is the single membership row for a (team, user) pair.
type TeamMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"not null;uniqueIndex:ux_team_members_team_user,priority:1" json:"team_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_team_members_team_user,priority:2;index" json:"user_id"`
	Role      string    `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	InvitedBy *uint     `gorm:"default:null" json:"invited_by"`
	InvitedAt time.Time `json:"invited_at"`
	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsValidTeamRole reports whether role is one of owner, admin, member, viewer.
func IsValidTeamRole(role string) bool {
	switch role {
	case TeamRoleOwner, TeamRoleAdmin, TeamRoleMember, TeamRoleViewer:
		return true
	default:
		return false
	}
}

// IsAssignableTeamRole reports whether role may be granted through membership
// operations. The owner role only comes from team creation.
func IsAssignableTeamRole(role string) bool {
	return IsValidTeamRole(role) && role != TeamRoleOwner
}

// BeforeSave rejects any role outside the closed set, whichever code path writes the row.
func (m *TeamMember) BeforeSave(tx *gorm.DB) error {
	if !IsValidTeamRole(m.Role) {
		return ErrInvalidTeamRole
	}
	return nil
}

func (m *TeamMember) HasAdminRole() bool {
	return m.Role == TeamRoleAdmin || m.Role == TeamRoleOwner
}
