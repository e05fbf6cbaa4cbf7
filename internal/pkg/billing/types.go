package billing

import "github.com/ManuelReschke/TaskFox/app/models"

// CurrentSubscription pairs a user's subscription with its plan.
type CurrentSubscription struct {
	Subscription *models.UserSubscription
	Plan         *models.SubscriptionPlan
}

// Webhook outcomes reported back to the caller and recorded in metrics.
const (
	OutcomeApplied   = "applied"
	OutcomeNoMatch   = "no_match"
	OutcomeAccepted  = "accepted"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
)

// WebhookResult describes how a delivered event was handled.
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Outcome   string `json:"outcome"`
}

// SweepReport summarises one reconciliation sweep.
type SweepReport struct {
	Processed int   `json:"processed"`
	Resolved  int   `json:"resolved"`
	Failed    int   `json:"failed"`
	Open      int64 `json:"open"`
}
