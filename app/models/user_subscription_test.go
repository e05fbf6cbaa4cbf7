package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserSubscriptionPredicates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := &UserSubscription{
		Status:             SubscriptionStatusActive,
		CurrentPeriodStart: now.AddDate(0, -1, 0),
		CurrentPeriodEnd:   now.AddDate(0, 0, 10),
	}

	assert.True(t, sub.IsActiveAt(now))
	assert.False(t, sub.IsExpiredAt(now))
	assert.False(t, sub.IsInTrialAt(now))
	assert.Equal(t, 10, sub.DaysRemainingAt(now))
	assert.NotNil(t, sub.NextBillingDateAt(now))

	// period end equal to now is no longer active but not yet expired
	assert.False(t, sub.IsActiveAt(sub.CurrentPeriodEnd))
	assert.False(t, sub.IsExpiredAt(sub.CurrentPeriodEnd))
	assert.True(t, sub.IsExpiredAt(sub.CurrentPeriodEnd.Add(time.Second)))

	sub.Status = SubscriptionStatusPastDue
	assert.False(t, sub.IsActiveAt(now))
	assert.True(t, sub.IsPastDue())
	assert.Equal(t, "Past Due", sub.StatusLabel())

	sub.Status = SubscriptionStatusCancelled
	assert.Nil(t, sub.NextBillingDateAt(now))
}

func TestUserSubscriptionTrial(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	trialEnd := now.Add(72 * time.Hour)
	sub := &UserSubscription{Status: SubscriptionStatusActive, CurrentPeriodStart: now, CurrentPeriodEnd: now.AddDate(0, 1, 0), TrialEndsAt: &trialEnd}

	assert.True(t, sub.IsInTrialAt(now))
	assert.Equal(t, 3, sub.TrialDaysRemainingAt(now))
	assert.False(t, sub.IsInTrialAt(trialEnd))
	assert.Equal(t, 0, sub.TrialDaysRemainingAt(trialEnd))
}

func TestUserSubscriptionBeforeSave(t *testing.T) {
	now := time.Now()
	sub := &UserSubscription{Status: SubscriptionStatusActive, CurrentPeriodStart: now, CurrentPeriodEnd: now}
	assert.NoError(t, sub.BeforeSave(nil))

	sub.CurrentPeriodEnd = now.Add(-time.Minute)
	assert.ErrorIs(t, sub.BeforeSave(nil), ErrInvalidSubscriptionPeriod)

	sub.CurrentPeriodEnd = now.Add(time.Hour)
	sub.Status = "trialing"
	assert.ErrorIs(t, sub.BeforeSave(nil), ErrInvalidSubscriptionStatus)
}

func TestUserSubscriptionHasProviderSubscription(t *testing.T) {
	sub := &UserSubscription{}
	assert.False(t, sub.HasProviderSubscription())
	empty := ""
	sub.ProviderSubscriptionID = &empty
	assert.False(t, sub.HasProviderSubscription())
	id := "sub_123"
	sub.ProviderSubscriptionID = &id
	assert.True(t, sub.HasProviderSubscription())
}
