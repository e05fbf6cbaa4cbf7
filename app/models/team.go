package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Team is owned by exactly one user. OwnerID is set on creation and never updated.
type Team struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Description string         `gorm:"type:text" json:"description" validate:"max=1000"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Team) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// IsOwnedBy reports whether userID is the team owner.
func (t *Team) IsOwnedBy(userID uint) bool {
	return t != nil && userID != 0 && t.OwnerID == userID
}
