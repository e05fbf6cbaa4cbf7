package repository

import (
	"time"

	"github.com/ManuelReschke/TaskFox/app/models"
	"gorm.io/gorm"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new user settings repository instance
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetOrCreate(userID uint) (*models.UserSettings, error) {
	return models.GetOrCreateUserSettings(r.db, userID)
}

func (r *settingsRepository) Save(settings *models.UserSettings) error {
	return r.db.Save(settings).Error
}

// TouchAPIKeyUsage stamps the last time the key authenticated a request.
func (r *settingsRepository) TouchAPIKeyUsage(settingsID uint) error {
	return r.db.Model(&models.UserSettings{}).Where("id = ?", settingsID).Update("api_key_last_used_at", time.Now()).Error
}
