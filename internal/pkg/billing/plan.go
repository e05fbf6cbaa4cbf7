package billing

import (
	"strings"
	"time"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/shopspring/decimal"
)

// periodEnd returns the end of a billing period that starts at start.
func periodEnd(start time.Time, interval string) time.Time {
	if interval == models.PlanIntervalYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// providerInterval translates a plan interval into the provider's recurring unit.
func providerInterval(interval string) string {
	if interval == models.PlanIntervalYearly {
		return "year"
	}
	return "month"
}

func amountInCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func priceSpecFor(plan *models.SubscriptionPlan) PriceSpec {
	return PriceSpec{
		PlanSlug:    plan.Slug,
		ProductName: plan.Name,
		Description: plan.Description,
		PriceID:     plan.ProviderPriceID,
		Amount:      plan.Price,
		Currency:    strings.ToLower(plan.Currency),
		Interval:    plan.Interval,
		TrialDays:   plan.TrialDays,
	}
}

// mapProviderStatus folds provider subscription states into the local status
// enum. ok is false for states it does not know.
func mapProviderStatus(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing":
		return models.SubscriptionStatusActive, true
	case "past_due", "incomplete":
		return models.SubscriptionStatusPastDue, true
	case "unpaid", "paused":
		return models.SubscriptionStatusUnpaid, true
	case "canceled", "cancelled", "incomplete_expired":
		return models.SubscriptionStatusCancelled, true
	default:
		return "", false
	}
}

// Normalised webhook event types.
const (
	EventSubscriptionCreated = "subscription.created"
	EventSubscriptionUpdated = "subscription.updated"
	EventSubscriptionDeleted = "subscription.deleted"
	EventPaymentSucceeded    = "payment.succeeded"
	EventPaymentFailed       = "payment.failed"
)

// normalizeEventType maps provider event names to the normalised set; unknown
// names map to "".
func normalizeEventType(providerType string) string {
	switch strings.TrimSpace(providerType) {
	case "customer.subscription.created":
		return EventSubscriptionCreated
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionDeleted
	case "invoice.payment_succeeded", "invoice.paid":
		return EventPaymentSucceeded
	case "invoice.payment_failed":
		return EventPaymentFailed
	default:
		return ""
	}
}
