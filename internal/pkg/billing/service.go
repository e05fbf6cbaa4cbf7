package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/plans"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service manages the subscription lifecycle. Every operation runs in one
// repository transaction; provider calls happen inside it, so a provider
// failure rolls back every local write of the operation.
type Service struct {
	repos    *repository.Repositories
	provider Provider
	opts     options
}

// NewService creates a billing service from injected repositories and provider.
func NewService(repos *repository.Repositories, provider Provider, opts ...Option) *Service {
	if provider == nil {
		provider = NewDisabledProvider()
	}
	return &Service{repos: repos, provider: provider, opts: buildOptions(opts)}
}

// WithRepositories returns a copy of the service bound to repos, typically a
// transaction opened by the caller.
func (s *Service) WithRepositories(repos *repository.Repositories) *Service {
	c := *s
	c.repos = repos
	return &c
}

// CreateFreeSubscription binds a newly registered user to the free plan for one year.
func (s *Service) CreateFreeSubscription(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	plan, err := plans.NewCatalog(s.repos.Plan).GetBySlug(ctx, models.PlanSlugFree)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			return nil, ErrFreePlanMissing
		}
		return nil, err
	}

	now := s.opts.now()
	sub := &models.UserSubscription{
		UserID:             userID,
		PlanID:             plan.ID,
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(1, 0, 0),
	}
	if err := s.repos.Subscription.Create(sub); err != nil {
		return nil, fmt.Errorf("create free subscription: %w", err)
	}
	return sub, nil
}

// Subscribe moves userID onto a paid plan. An active free subscription is
// upgraded in place; an active paid one fails with ErrAlreadySubscribed. A
// lapsed paid subscription (past due, unpaid or expired) is cancelled at the
// provider before the replacement is created.
func (s *Service) Subscribe(ctx context.Context, userID, planID uint, paymentMethodRef string) (*models.UserSubscription, error) {
	var (
		result     *models.UserSubscription
		externalID string
		replacedID string
		replaceErr error
	)

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err := tx.User.GetByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		catalog := plans.NewCatalog(tx.Plan)
		plan, err := catalog.GetByID(ctx, planID)
		if err != nil {
			if errors.Is(err, plans.ErrNotFound) {
				return ErrPlanNotFound
			}
			return err
		}
		if !plan.IsActive {
			return ErrPlanNotFound
		}
		if plan.IsFree() {
			return ErrPlanNotPurchasable
		}

		now := s.opts.now()
		existing, err := tx.Subscription.GetByUserID(userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil && existing.IsActiveAt(now) {
			current, err := catalog.GetByID(ctx, existing.PlanID)
			if err != nil && !errors.Is(err, plans.ErrNotFound) {
				return err
			}
			if current == nil || current.IsPaid() {
				return ErrAlreadySubscribed
			}
		}

		customerID, err := s.ensureCustomer(ctx, tx, user)
		if err != nil {
			return err
		}

		if existing != nil && existing.HasProviderSubscription() && !existing.IsCancelled() {
			replacedID = *existing.ProviderSubscriptionID
			replaceErr = s.provider.CancelSubscription(ctx, replacedID)
		}

		ext, err := s.provider.CreateSubscription(ctx, customerID, priceSpecFor(plan), paymentMethodRef)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSubscriptionCreateFailed, err)
		}
		externalID = ext.ID

		sub := existing
		if sub == nil {
			sub = &models.UserSubscription{UserID: userID}
		}
		sub.PlanID = plan.ID
		sub.ProviderSubscriptionID = &ext.ID
		sub.Status = models.SubscriptionStatusActive
		sub.CurrentPeriodStart = now
		sub.CurrentPeriodEnd = periodEnd(now, plan.Interval)
		sub.CancelledAt = nil
		sub.TrialEndsAt = nil
		if plan.TrialDays > 0 {
			trialEnd := now.AddDate(0, 0, plan.TrialDays)
			sub.TrialEndsAt = &trialEnd
		}
		if err := tx.Subscription.Save(sub); err != nil {
			return fmt.Errorf("%w: %w", ErrStateNotPersisted, err)
		}
		result = sub
		return nil
	})

	if err != nil && externalID != "" {
		// the provider side exists but the local transaction did not commit
		s.compensateOrphan(ctx, userID, externalID, err)
	}
	if replacedID != "" {
		switch {
		case err == nil && replaceErr != nil:
			// the local row no longer references the old provider subscription
			s.recordOrphan(userID, replacedID, fmt.Errorf("replaced by %s", externalID), replaceErr)
		case err != nil && replaceErr == nil:
			s.recordDrift(models.ReconcileCancelDrift, userID, replacedID, err)
		}
	}
	s.opts.metrics.ObserveBillingOperation("subscribe", err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel cancels the user's subscription at the provider and locally.
// Cancelling an already cancelled subscription is a no-op.
func (s *Service) Cancel(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	var (
		result            *models.UserSubscription
		providerCancelled string
	)

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		sub, err := s.loadSubscription(tx, userID)
		if err != nil {
			return err
		}
		if sub.IsCancelled() {
			result = sub
			return nil
		}

		if sub.HasProviderSubscription() {
			if err := s.provider.CancelSubscription(ctx, *sub.ProviderSubscriptionID); err != nil {
				return fmt.Errorf("%w: %w", ErrSubscriptionCancelFailed, err)
			}
			providerCancelled = *sub.ProviderSubscriptionID
		}

		now := s.opts.now()
		sub.Status = models.SubscriptionStatusCancelled
		sub.CancelledAt = &now
		if err := tx.Subscription.Save(sub); err != nil {
			return fmt.Errorf("%w: %w", ErrStateNotPersisted, err)
		}
		result = sub
		return nil
	})

	if err != nil && providerCancelled != "" {
		s.recordDrift(models.ReconcileCancelDrift, userID, providerCancelled, err)
	}
	s.opts.metrics.ObserveBillingOperation("cancel", err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reactivate resumes a cancelled subscription.
func (s *Service) Reactivate(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	var (
		result          *models.UserSubscription
		providerResumed string
	)

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		sub, err := s.loadSubscription(tx, userID)
		if err != nil {
			return err
		}
		if !sub.IsCancelled() {
			return ErrNotCancelled
		}

		if sub.HasProviderSubscription() {
			if err := s.provider.ResumeSubscription(ctx, *sub.ProviderSubscriptionID); err != nil {
				return fmt.Errorf("%w: %w", ErrSubscriptionReactivateFailed, err)
			}
			providerResumed = *sub.ProviderSubscriptionID
		}

		sub.Status = models.SubscriptionStatusActive
		sub.CancelledAt = nil
		if err := tx.Subscription.Save(sub); err != nil {
			return fmt.Errorf("%w: %w", ErrStateNotPersisted, err)
		}
		result = sub
		return nil
	})

	if err != nil && providerResumed != "" {
		s.recordDrift(models.ReconcileResumeDrift, userID, providerResumed, err)
	}
	s.opts.metrics.ObserveBillingOperation("reactivate", err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Current returns the user's subscription and plan.
func (s *Service) Current(ctx context.Context, userID uint) (*CurrentSubscription, error) {
	sub, err := s.loadSubscription(s.repos, userID)
	if err != nil {
		return nil, err
	}
	plan, err := plans.NewCatalog(s.repos.Plan).GetByID(ctx, sub.PlanID)
	if err != nil && !errors.Is(err, plans.ErrNotFound) {
		return nil, err
	}
	return &CurrentSubscription{Subscription: sub, Plan: plan}, nil
}

func (s *Service) loadSubscription(repos *repository.Repositories, userID uint) (*models.UserSubscription, error) {
	sub, err := repos.Subscription.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// ensureCustomer returns the user's provider customer id, creating and storing it on first use.
func (s *Service) ensureCustomer(ctx context.Context, tx *repository.Repositories, user *models.User) (string, error) {
	if user.HasBillingCustomer() {
		return *user.ProviderCustomerID, nil
	}
	id, err := s.provider.CreateCustomer(ctx, user.Email, user.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSubscriptionCreateFailed, err)
	}
	if err := tx.User.SetProviderCustomerID(user.ID, id); err != nil {
		return "", fmt.Errorf("%w: store customer id: %w", ErrStateNotPersisted, err)
	}
	user.ProviderCustomerID = &id
	return id, nil
}

// compensateOrphan cancels a provider subscription whose local row was rolled
// back. When that fails too, the orphan is persisted for the sweeper.
func (s *Service) compensateOrphan(ctx context.Context, userID uint, externalID string, cause error) {
	ctx = context.WithoutCancel(ctx)
	log := s.opts.log.WithFields(logrus.Fields{
		"user_id":                  userID,
		"provider_subscription_id": externalID,
	})

	cancelErr := s.provider.CancelSubscription(ctx, externalID)
	if cancelErr == nil {
		log.WithError(cause).Warn("cancelled provider subscription after local write failed")
		return
	}
	s.recordOrphan(userID, externalID, cause, cancelErr)
}

// recordOrphan persists a live provider subscription that no local row references.
func (s *Service) recordOrphan(userID uint, externalID string, cause, cancelErr error) {
	log := s.opts.log.WithFields(logrus.Fields{
		"user_id":                  userID,
		"provider_subscription_id": externalID,
	})
	item := &models.BillingReconciliationItem{
		Kind:                   models.ReconcileOrphanedSubscription,
		UserID:                 userID,
		ProviderSubscriptionID: externalID,
		Reason:                 cause.Error(),
		Attempts:               1,
		LastError:              cancelErr.Error(),
	}
	if err := s.repos.Reconciliation.Create(item); err != nil {
		log = log.WithField("persist_error", err.Error())
	}
	log.WithField("reconcile", true).WithError(cancelErr).Error("orphaned provider subscription")
}

// recordDrift persists a provider change the local store failed to mirror.
func (s *Service) recordDrift(kind string, userID uint, externalID string, cause error) {
	log := s.opts.log.WithFields(logrus.Fields{
		"user_id":                  userID,
		"provider_subscription_id": externalID,
		"kind":                     kind,
		"reconcile":                true,
	})
	item := &models.BillingReconciliationItem{
		Kind:                   kind,
		UserID:                 userID,
		ProviderSubscriptionID: externalID,
		Reason:                 cause.Error(),
	}
	if err := s.repos.Reconciliation.Create(item); err != nil {
		log = log.WithField("persist_error", err.Error())
	}
	log.WithError(cause).Error("provider and local subscription state diverged")
}
