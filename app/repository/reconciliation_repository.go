package repository

import (
	"github.com/ManuelReschke/TaskFox/app/models"
	"gorm.io/gorm"
)

type reconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates a new reconciliation item repository instance
func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) Create(item *models.BillingReconciliationItem) error {
	return r.db.Create(item).Error
}

func (r *reconciliationRepository) Save(item *models.BillingReconciliationItem) error {
	return r.db.Save(item).Error
}

// ListOpen returns unresolved items, oldest first.
func (r *reconciliationRepository) ListOpen(limit int) ([]models.BillingReconciliationItem, error) {
	var items []models.BillingReconciliationItem
	q := r.db.Where("resolved_at IS NULL").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *reconciliationRepository) CountOpen() (int64, error) {
	var count int64
	err := r.db.Model(&models.BillingReconciliationItem{}).Where("resolved_at IS NULL").Count(&count).Error
	return count, err
}
