package repository

import (
	"github.com/ManuelReschke/TaskFox/app/models"
	"gorm.io/gorm"
)

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

func (r *planRepository) Save(plan *models.SubscriptionPlan) error {
	return r.db.Save(plan).Error
}

// GetByID retrieves a plan regardless of its active flag.
func (r *planRepository) GetByID(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) GetBySlug(slug string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.Where("slug = ?", slug).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListActive returns active plans ordered by ascending price, ties broken by id.
func (r *planRepository) ListActive() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Where("is_active = ?", true).Order("price ASC").Order("id ASC").Find(&plans).Error
	return plans, err
}

func (r *planRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.SubscriptionPlan{}).Count(&count).Error
	return count, err
}
