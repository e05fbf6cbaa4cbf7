package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper retries open reconciliation items: orphaned provider subscriptions
// are cancelled, drifted rows are resynchronised from the provider.
type Sweeper struct {
	repos    *repository.Repositories
	provider Provider
	opts     options
}

func NewSweeper(repos *repository.Repositories, provider Provider, opts ...Option) *Sweeper {
	if provider == nil {
		provider = NewDisabledProvider()
	}
	return &Sweeper{repos: repos, provider: provider, opts: buildOptions(opts)}
}

// Schedule registers the sweep on c using a cron spec such as "@every 10m".
func (s *Sweeper) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		if _, err := s.Run(context.Background()); err != nil {
			s.opts.log.WithError(err).Error("reconciliation sweep failed")
		}
	})
}

// Run processes one batch of open items.
func (s *Sweeper) Run(ctx context.Context) (*SweepReport, error) {
	items, err := s.repos.Reconciliation.ListOpen(s.opts.batch)
	if err != nil {
		return nil, fmt.Errorf("list reconciliation items: %w", err)
	}

	report := &SweepReport{}
	for i := range items {
		item := &items[i]
		report.Processed++

		err := s.resolve(ctx, item)
		item.Attempts++
		log := s.opts.log.WithFields(logrus.Fields{
			"item_id":                  item.ID,
			"kind":                     item.Kind,
			"provider_subscription_id": item.ProviderSubscriptionID,
			"attempts":                 item.Attempts,
		})
		if err != nil {
			report.Failed++
			item.LastError = err.Error()
			log.WithError(err).Warn("reconciliation attempt failed")
		} else {
			report.Resolved++
			now := s.opts.now()
			item.ResolvedAt = &now
			item.LastError = ""
			log.Info("reconciliation item resolved")
		}
		if err := s.repos.Reconciliation.Save(item); err != nil {
			return report, fmt.Errorf("save reconciliation item %d: %w", item.ID, err)
		}
	}

	open, err := s.repos.Reconciliation.CountOpen()
	if err != nil {
		return report, err
	}
	report.Open = open
	s.opts.metrics.SetReconciliationOpenItems(open)
	return report, nil
}

func (s *Sweeper) resolve(ctx context.Context, item *models.BillingReconciliationItem) error {
	switch item.Kind {
	case models.ReconcileOrphanedSubscription:
		return s.cancelOrphan(ctx, item.ProviderSubscriptionID)
	case models.ReconcileCancelDrift, models.ReconcileResumeDrift:
		return s.resync(ctx, item.ProviderSubscriptionID)
	default:
		return fmt.Errorf("unknown reconciliation kind %q", item.Kind)
	}
}

// cancelOrphan treats an orphan the provider already cancelled as resolved;
// cancelling it again would be rejected.
func (s *Sweeper) cancelOrphan(ctx context.Context, providerSubscriptionID string) error {
	ps, err := s.provider.RetrieveSubscription(ctx, providerSubscriptionID)
	if err != nil {
		return err
	}
	if status, ok := mapProviderStatus(ps.Status); ok && status == models.SubscriptionStatusCancelled {
		return nil
	}
	return s.provider.CancelSubscription(ctx, providerSubscriptionID)
}

// resync overwrites the local row with the provider's current state.
func (s *Sweeper) resync(ctx context.Context, providerSubscriptionID string) error {
	ps, err := s.provider.RetrieveSubscription(ctx, providerSubscriptionID)
	if err != nil {
		return err
	}
	status, ok := mapProviderStatus(ps.Status)
	if !ok {
		return fmt.Errorf("unknown provider status %q", ps.Status)
	}

	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		sub, err := findByProviderID(tx, providerSubscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return errors.New("no local subscription references the provider subscription")
		}
		sub.Status = status
		if !ps.CurrentPeriodStart.IsZero() {
			sub.CurrentPeriodStart = ps.CurrentPeriodStart
		}
		if !ps.CurrentPeriodEnd.IsZero() {
			sub.CurrentPeriodEnd = ps.CurrentPeriodEnd
		}
		switch {
		case status == models.SubscriptionStatusCancelled && sub.CancelledAt == nil:
			now := s.opts.now()
			sub.CancelledAt = &now
		case status != models.SubscriptionStatusCancelled:
			sub.CancelledAt = nil
		}
		return tx.Subscription.Save(sub)
	})
}
