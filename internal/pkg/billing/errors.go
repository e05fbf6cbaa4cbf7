package billing

import "errors"

var (
	ErrUserNotFound                 = errors.New("user not found")
	ErrAlreadySubscribed            = errors.New("user already has an active subscription")
	ErrPlanNotFound                 = errors.New("plan not found")
	ErrPlanNotPurchasable           = errors.New("plan cannot be purchased")
	ErrFreePlanMissing              = errors.New("free plan is not configured")
	ErrSubscriptionNotFound         = errors.New("subscription not found")
	ErrNotCancelled                 = errors.New("subscription is not cancelled")
	ErrSubscriptionCreateFailed     = errors.New("failed to create subscription")
	ErrSubscriptionCancelFailed     = errors.New("failed to cancel subscription")
	ErrSubscriptionReactivateFailed = errors.New("failed to reactivate subscription")
	ErrProviderNotConfigured        = errors.New("billing provider is not configured")
	ErrStateNotPersisted            = errors.New("failed to persist subscription state")

	ErrInvalidSignature        = errors.New("invalid webhook signature")
	ErrMalformedEvent          = errors.New("malformed webhook event")
	ErrWebhookProcessingFailed = errors.New("webhook processing failed")
)
