package repository

import (
	"github.com/ManuelReschke/TaskFox/app/models"
	"gorm.io/gorm"
)

type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new todo repository instance
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(todo *models.Todo) error {
	return r.db.Create(todo).Error
}

func (r *todoRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Todo{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *todoRepository) CountByTeam(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Todo{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

func (r *todoRepository) CountCompletedByTeam(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Todo{}).Where("team_id = ? AND completed = ?", teamID, true).Count(&count).Error
	return count, err
}
