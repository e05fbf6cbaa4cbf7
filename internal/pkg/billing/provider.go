package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Provider is the boundary to the external billing system.
type Provider interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateSubscription(ctx context.Context, customerID string, price PriceSpec, paymentMethodRef string) (*ProviderSubscription, error)
	RetrieveSubscription(ctx context.Context, id string) (*ProviderSubscription, error)
	CancelSubscription(ctx context.Context, id string) error
	ResumeSubscription(ctx context.Context, id string) error
}

// PriceSpec describes what the provider should charge. PriceID, when set,
// refers to a price that already exists at the provider and wins over the inline amount.
type PriceSpec struct {
	PlanSlug    string
	ProductName string
	Description string
	PriceID     string
	Amount      decimal.Decimal
	Currency    string
	Interval    string
	TrialDays   int
}

// ProviderSubscription is the provider-side view of a subscription. Status is
// the provider's raw status string.
type ProviderSubscription struct {
	ID                 string
	Status             string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	TrialEnd           *time.Time
}

// disabledProvider is used when no provider credentials are configured.
type disabledProvider struct{}

// NewDisabledProvider returns a Provider that rejects every call.
func NewDisabledProvider() Provider {
	return disabledProvider{}
}

func (disabledProvider) CreateCustomer(context.Context, string, string) (string, error) {
	return "", ErrProviderNotConfigured
}

func (disabledProvider) CreateSubscription(context.Context, string, PriceSpec, string) (*ProviderSubscription, error) {
	return nil, ErrProviderNotConfigured
}

func (disabledProvider) RetrieveSubscription(context.Context, string) (*ProviderSubscription, error) {
	return nil, ErrProviderNotConfigured
}

func (disabledProvider) CancelSubscription(context.Context, string) error {
	return ErrProviderNotConfigured
}

func (disabledProvider) ResumeSubscription(context.Context, string) error {
	return ErrProviderNotConfigured
}
