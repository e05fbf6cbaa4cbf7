package models

import "time"

const (
	// ReconcileOrphanedSubscription: the provider holds a subscription that has no local row.
	ReconcileOrphanedSubscription = "orphaned_subscription"
	// ReconcileCancelDrift: the provider cancelled but the local row still says otherwise.
	ReconcileCancelDrift = "cancel_drift"
	// ReconcileResumeDrift: the provider resumed but the local row is still cancelled.
	ReconcileResumeDrift = "resume_drift"
)

// BillingReconciliationItem is an open follow-up between local state and the billing provider.
type BillingReconciliationItem struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	Kind                   string     `gorm:"type:varchar(32);not null;index" json:"kind"`
	UserID                 uint       `gorm:"not null;index" json:"user_id"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index" json:"provider_subscription_id"`
	Reason                 string     `gorm:"type:text" json:"reason"`
	Attempts               int        `gorm:"default:0" json:"attempts"`
	LastError              string     `gorm:"type:text" json:"last_error"`
	ResolvedAt             *time.Time `gorm:"default:null;index" json:"resolved_at,omitempty"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *BillingReconciliationItem) IsResolved() bool {
	return i.ResolvedAt != nil
}
