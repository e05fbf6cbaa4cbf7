package repository

import (
	"github.com/ManuelReschke/TaskFox/app/models"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(sub *models.UserSubscription) error {
	return r.db.Create(sub).Error
}

// Save writes every column of sub, inserting when it has no id yet.
func (r *subscriptionRepository) Save(sub *models.UserSubscription) error {
	return r.db.Save(sub).Error
}

func (r *subscriptionRepository) GetByUserID(userID uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := r.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByProviderSubscriptionID(providerSubscriptionID string) (*models.UserSubscription, error) {
	if providerSubscriptionID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var sub models.UserSubscription
	if err := r.db.Where("provider_subscription_id = ?", providerSubscriptionID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}
