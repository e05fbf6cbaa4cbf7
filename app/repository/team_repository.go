package repository

import (
	"github.com/ManuelReschke/TaskFox/app/models"
	"gorm.io/gorm"
)

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository instance
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(team *models.Team) error {
	return r.db.Create(team).Error
}

func (r *teamRepository) GetByID(id uint) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update writes name and description only; the owner never changes.
func (r *teamRepository) Update(team *models.Team) error {
	return r.db.Model(team).Select("name", "description").Updates(team).Error
}

// Delete soft-deletes the team.
func (r *teamRepository) Delete(id uint) error {
	return r.db.Delete(&models.Team{}, id).Error
}

// ListForUser returns teams the user owns or belongs to, newest first.
func (r *teamRepository) ListForUser(userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.
		Where("owner_id = ? OR id IN (?)", userID,
			r.db.Model(&models.TeamMember{}).Select("team_id").Where("user_id = ?", userID)).
		Order("created_at DESC").Order("id DESC").
		Find(&teams).Error
	return teams, err
}

func (r *teamRepository) CountOwnedBy(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Team{}).Where("owner_id = ?", userID).Count(&count).Error
	return count, err
}
