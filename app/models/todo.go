package models

import (
	"time"

	"gorm.io/gorm"
)

// Todo carries only what the entitlement gate and the gated create endpoint need.
type Todo struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	TeamID    *uint          `gorm:"index;default:null" json:"team_id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Completed bool           `gorm:"default:false;index" json:"completed"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
