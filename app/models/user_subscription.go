package models

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusUnpaid    = "unpaid"
)

var (
	ErrInvalidSubscriptionStatus = errors.New("invalid subscription status")
	ErrInvalidSubscriptionPeriod = errors.New("current_period_end must not be before current_period_start")
)

// UserSubscription binds one user to one plan. Rows are never deleted;
// cancellation is a status transition that keeps the last known period.
type UserSubscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	PlanID                 uint       `gorm:"not null;index" json:"plan_id"`
	ProviderSubscriptionID *string    `gorm:"type:varchar(191);index" json:"-"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	CurrentPeriodStart     time.Time  `gorm:"not null" json:"current_period_start"`
	CurrentPeriodEnd       time.Time  `gorm:"not null;index" json:"current_period_end"`
	TrialEndsAt            *time.Time `gorm:"default:null" json:"trial_ends_at"`
	CancelledAt            *time.Time `gorm:"default:null" json:"cancelled_at"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsValidSubscriptionStatus reports whether status belongs to the local status enum.
func IsValidSubscriptionStatus(status string) bool {
	switch status {
	case SubscriptionStatusActive, SubscriptionStatusCancelled, SubscriptionStatusPastDue, SubscriptionStatusUnpaid:
		return true
	default:
		return false
	}
}

func (s *UserSubscription) BeforeSave(tx *gorm.DB) error {
	if !IsValidSubscriptionStatus(s.Status) {
		return ErrInvalidSubscriptionStatus
	}
	if s.CurrentPeriodEnd.Before(s.CurrentPeriodStart) {
		return ErrInvalidSubscriptionPeriod
	}
	return nil
}

// HasProviderSubscription reports whether the row is mirrored at the billing provider.
func (s *UserSubscription) HasProviderSubscription() bool {
	return s.ProviderSubscriptionID != nil && *s.ProviderSubscriptionID != ""
}

// IsActiveAt: status active and the period has not ended yet.
func (s *UserSubscription) IsActiveAt(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.CurrentPeriodEnd.After(now)
}

func (s *UserSubscription) IsExpiredAt(now time.Time) bool {
	return s.CurrentPeriodEnd.Before(now)
}

func (s *UserSubscription) IsInTrialAt(now time.Time) bool {
	return s.TrialEndsAt != nil && s.TrialEndsAt.After(now)
}

func (s *UserSubscription) IsCancelled() bool {
	return s.Status == SubscriptionStatusCancelled
}

func (s *UserSubscription) IsPastDue() bool {
	return s.Status == SubscriptionStatusPastDue
}

func (s *UserSubscription) IsUnpaid() bool {
	return s.Status == SubscriptionStatusUnpaid
}

// DaysRemainingAt returns whole days left in the current period.
func (s *UserSubscription) DaysRemainingAt(now time.Time) int {
	if s.IsExpiredAt(now) {
		return 0
	}
	return wholeDays(s.CurrentPeriodEnd.Sub(now))
}

func (s *UserSubscription) TrialDaysRemainingAt(now time.Time) int {
	if !s.IsInTrialAt(now) {
		return 0
	}
	return wholeDays(s.TrialEndsAt.Sub(now))
}

// NextBillingDateAt is nil for cancelled or expired subscriptions.
func (s *UserSubscription) NextBillingDateAt(now time.Time) *time.Time {
	if s.IsCancelled() || s.IsExpiredAt(now) {
		return nil
	}
	end := s.CurrentPeriodEnd
	return &end
}

func (s *UserSubscription) StatusLabel() string {
	switch s.Status {
	case SubscriptionStatusActive:
		return "Active"
	case SubscriptionStatusCancelled:
		return "Cancelled"
	case SubscriptionStatusPastDue:
		return "Past Due"
	case SubscriptionStatusUnpaid:
		return "Unpaid"
	default:
		return "Unknown"
	}
}

func wholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}
