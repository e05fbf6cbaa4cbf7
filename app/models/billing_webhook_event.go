package models

import (
	"time"

	"gorm.io/datatypes"
)

const BillingProviderStripe = "stripe"

// BillingWebhookEvent records every validated provider event. The unique
// (provider, provider_event_id) pair makes redeliveries detectable.
type BillingWebhookEvent struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	Provider               string         `gorm:"type:varchar(20);not null;index:ux_billing_webhook_events_provider_event,unique,priority:1" json:"provider"`
	ProviderEventID        string         `gorm:"type:varchar(191);not null;index:ux_billing_webhook_events_provider_event,unique,priority:2" json:"provider_event_id"`
	EventType              string         `gorm:"type:varchar(100);not null;index" json:"event_type"`
	ProviderSubscriptionID string         `gorm:"type:varchar(191);default:'';index" json:"provider_subscription_id"`
	Payload                datatypes.JSON `json:"payload"`
	ReceivedAt             time.Time      `gorm:"not null" json:"received_at"`
	ProcessedAt            *time.Time     `gorm:"default:null" json:"processed_at,omitempty"`
	CreatedAt              time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
