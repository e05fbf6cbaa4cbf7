package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepCancelsOrphanedSubscriptions(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "sweep@example.com")

	failWrites(t, f.db, "user_subscriptions")
	f.provider.cancelErr = errors.New("provider unavailable")
	_, err := f.svc.Subscribe(ctx, u.ID, f.pro.ID, "pm")
	require.Error(t, err)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	sweeper := NewSweeper(f.repos, f.provider, WithClock(fixedClock), WithMetrics(m))

	// the provider is still down: the item stays open and counts the attempt
	report, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SweepReport{Processed: 1, Failed: 1, Open: 1}, report)

	f.provider.cancelErr = nil
	report, err = sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SweepReport{Processed: 1, Resolved: 1, Open: 0}, report)
	assert.Equal(t, f.provider.created, f.provider.cancelled)
	assert.Equal(t, 0.0, promtest.ToFloat64(m.ReconciliationOpenItems))

	var item models.BillingReconciliationItem
	require.NoError(t, f.db.First(&item).Error)
	assert.True(t, item.IsResolved())
	assert.Equal(t, 3, item.Attempts)
	assert.Empty(t, item.LastError)

	report, err = sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
}

func TestSweepResolvesOrphanAlreadyCancelledAtProvider(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "late-cancel@example.com")

	failWrites(t, f.db, "user_subscriptions")
	f.provider.cancelErr = errors.New("timeout")
	_, err := f.svc.Subscribe(ctx, u.ID, f.pro.ID, "pm")
	require.Error(t, err)

	// the timed out cancel went through at the provider after all
	orphan := f.provider.created[0]
	f.provider.remote[orphan].Status = "canceled"

	report, err := NewSweeper(f.repos, f.provider, WithClock(fixedClock)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SweepReport{Processed: 1, Resolved: 1, Open: 0}, report)
	assert.Empty(t, f.provider.cancelled, "no second cancel is sent")
}

func TestSweepResyncsCancelDrift(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "drift-sweep@example.com")
	sub, err := f.svc.Subscribe(ctx, u.ID, f.pro.ID, "pm")
	require.NoError(t, err)

	failWrites(t, f.db, "user_subscriptions")
	_, err = f.svc.Cancel(ctx, u.ID)
	require.Error(t, err)

	// local writes work again; the provider already has the subscription cancelled
	require.NoError(t, f.db.Callback().Create().Remove("test:fail_user_subscriptions"))
	require.NoError(t, f.db.Callback().Update().Remove("test:fail_user_subscriptions"))

	report, err := NewSweeper(f.repos, f.provider, WithClock(fixedClock)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)

	stored, err := f.repos.Subscription.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledAt)
	assert.Equal(t, *sub.ProviderSubscriptionID, *stored.ProviderSubscriptionID)
}

func TestSweepResyncClearsCancellationWhenProviderIsActive(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "resume-sweep@example.com")
	sub, err := f.svc.Subscribe(ctx, u.ID, f.pro.ID, "pm")
	require.NoError(t, err)
	extID := *sub.ProviderSubscriptionID

	cancelled, err := f.svc.Cancel(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelledAt)

	f.provider.remote[extID].Status = "active"
	require.NoError(t, f.repos.Reconciliation.Create(&models.BillingReconciliationItem{
		Kind:                   models.ReconcileResumeDrift,
		UserID:                 u.ID,
		ProviderSubscriptionID: extID,
		Reason:                 "resume not persisted",
	}))

	report, err := NewSweeper(f.repos, f.provider).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Resolved)

	stored, err := f.repos.Subscription.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, stored.Status)
	assert.Nil(t, stored.CancelledAt)
}

func TestSweepKeepsUnknownKindsOpen(t *testing.T) {
	f := newBillingFixture(t)
	require.NoError(t, f.repos.Reconciliation.Create(&models.BillingReconciliationItem{
		Kind:                   "mystery",
		ProviderSubscriptionID: "sub_x",
	}))

	report, err := NewSweeper(f.repos, f.provider, WithBatchSize(10)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, int64(1), report.Open)

	items, err := f.repos.Reconciliation.ListOpen(0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].LastError, "unknown reconciliation kind")
}

func TestSweepSchedule(t *testing.T) {
	f := newBillingFixture(t)
	c := cron.New()

	id, err := NewSweeper(f.repos, f.provider).Schedule(c, "@every 10m")
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Len(t, c.Entries(), 1)

	_, err = NewSweeper(f.repos, f.provider).Schedule(c, "not a spec")
	assert.Error(t, err)
}
