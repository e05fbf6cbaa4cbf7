package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/ManuelReschke/TaskFox/internal/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fakeProvider struct {
	mu sync.Mutex

	seq         int
	customers   []string
	created     []string
	cancelled   []string
	resumed     []string
	lastPrice   PriceSpec
	lastPayment string
	remote      map[string]*ProviderSubscription

	customerErr error
	createErr   error
	cancelErr   error
	resumeErr   error
	retrieveErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{remote: map[string]*ProviderSubscription{}}
}

func (f *fakeProvider) CreateCustomer(_ context.Context, email, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.customerErr != nil {
		return "", f.customerErr
	}
	f.seq++
	id := fmt.Sprintf("cus_%d", f.seq)
	f.customers = append(f.customers, email)
	return id, nil
}

func (f *fakeProvider) CreateSubscription(_ context.Context, customerID string, price PriceSpec, pm string) (*ProviderSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	id := fmt.Sprintf("sub_%d", f.seq)
	f.created = append(f.created, id)
	f.lastPrice = price
	f.lastPayment = pm
	ps := &ProviderSubscription{ID: id, Status: "active", CurrentPeriodStart: testNow, CurrentPeriodEnd: periodEnd(testNow, price.Interval)}
	f.remote[id] = ps
	return ps, nil
}

func (f *fakeProvider) RetrieveSubscription(_ context.Context, id string) (*ProviderSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	ps, ok := f.remote[id]
	if !ok {
		return nil, errors.New("no such subscription")
	}
	cp := *ps
	return &cp, nil
}

func (f *fakeProvider) CancelSubscription(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	if ps, ok := f.remote[id]; ok {
		ps.Status = "canceled"
	}
	return nil
}

func (f *fakeProvider) ResumeSubscription(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.resumed = append(f.resumed, id)
	if ps, ok := f.remote[id]; ok {
		ps.Status = "active"
	}
	return nil
}

type billingFixture struct {
	db       *gorm.DB
	repos    *repository.Repositories
	provider *fakeProvider
	svc      *Service
	free     *models.SubscriptionPlan
	pro      *models.SubscriptionPlan
	yearly   *models.SubscriptionPlan
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	provider := newFakeProvider()

	f := &billingFixture{
		db:       db,
		repos:    repos,
		provider: provider,
		svc:      NewService(repos, provider, WithClock(fixedClock)),
	}
	f.free = f.createPlan(t, models.PlanSlugFree, "0", models.PlanIntervalMonthly)
	f.pro = f.createPlan(t, "pro", "9.99", models.PlanIntervalMonthly)
	f.yearly = f.createPlan(t, "pro-yearly", "99.99", models.PlanIntervalYearly)
	return f
}

func (f *billingFixture) createPlan(t *testing.T, slug, price, interval string) *models.SubscriptionPlan {
	t.Helper()
	p := &models.SubscriptionPlan{Slug: slug, Name: slug, Price: decimal.RequireFromString(price), Currency: "usd", Interval: interval, IsActive: true}
	require.NoError(t, f.repos.Plan.Create(p))
	return p
}

func (f *billingFixture) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := models.CreateUser("Billing User", email, "password123")
	require.NoError(t, err)
	require.NoError(t, f.repos.User.Create(u))
	return u
}

// failWrites makes every insert or update of table fail until the test ends.
func failWrites(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	name := "test:fail_" + table
	fail := func(d *gorm.DB) {
		if d.Statement.Table == table {
			_ = d.AddError(errors.New("simulated write failure"))
		}
	}
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, fail))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register(name, fail))
	t.Cleanup(func() {
		_ = db.Callback().Create().Remove(name)
		_ = db.Callback().Update().Remove(name)
	})
}
