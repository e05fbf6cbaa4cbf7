package repository

import (
	"github.com/ManuelReschke/TaskFox/app/models"
	"gorm.io/gorm"
)

type teamMemberRepository struct {
	db *gorm.DB
}

// NewTeamMemberRepository creates a new team membership repository instance
func NewTeamMemberRepository(db *gorm.DB) TeamMemberRepository {
	return &teamMemberRepository{db: db}
}

func (r *teamMemberRepository) Create(member *models.TeamMember) error {
	return r.db.Create(member).Error
}

func (r *teamMemberRepository) Get(teamID, userID uint) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamMemberRepository) Exists(teamID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", teamID, userID).Count(&count).Error
	return count > 0, err
}

// UpdateRole loads the row first so the model hook validates the new role.
func (r *teamMemberRepository) UpdateRole(teamID, userID uint, role string) error {
	member, err := r.Get(teamID, userID)
	if err != nil {
		return err
	}
	member.Role = role
	return r.db.Save(member).Error
}

func (r *teamMemberRepository) Delete(teamID, userID uint) error {
	res := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teamMemberRepository) ListByTeam(teamID uint) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.Where("team_id = ?", teamID).Order("joined_at ASC").Order("id ASC").Find(&members).Error
	return members, err
}

func (r *teamMemberRepository) CountByTeam(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}
