package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider implements Provider on top of the Stripe API.
type StripeProvider struct {
	sc *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProvider{sc: sc}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	c, err := p.sc.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create customer: %w", err)
	}
	return c.ID, nil
}

func (p *StripeProvider) CreateSubscription(ctx context.Context, customerID string, price PriceSpec, paymentMethodRef string) (*ProviderSubscription, error) {
	if paymentMethodRef != "" {
		attach := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerID)}
		attach.Context = ctx
		if _, err := p.sc.PaymentMethods.Attach(paymentMethodRef, attach); err != nil {
			return nil, fmt.Errorf("stripe: attach payment method: %w", err)
		}
	}

	item := &stripe.SubscriptionItemsParams{}
	if price.PriceID != "" {
		item.Price = stripe.String(price.PriceID)
	} else {
		productID, err := p.createProduct(ctx, price)
		if err != nil {
			return nil, err
		}
		item.PriceData = &stripe.SubscriptionItemPriceDataParams{
			Currency:   stripe.String(price.Currency),
			Product:    stripe.String(productID),
			UnitAmount: stripe.Int64(amountInCents(price.Amount)),
			Recurring: &stripe.SubscriptionItemPriceDataRecurringParams{
				Interval: stripe.String(providerInterval(price.Interval)),
			},
		}
	}

	params := &stripe.SubscriptionParams{
		Customer:        stripe.String(customerID),
		Items:           []*stripe.SubscriptionItemsParams{item},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	if paymentMethodRef != "" {
		params.DefaultPaymentMethod = stripe.String(paymentMethodRef)
	}
	if price.TrialDays > 0 {
		params.TrialPeriodDays = stripe.Int64(int64(price.TrialDays))
	}
	params.AddMetadata("plan", price.PlanSlug)
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	s, err := p.sc.Subscriptions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create subscription: %w", err)
	}
	return fromStripeSubscription(s), nil
}

func (p *StripeProvider) RetrieveSubscription(ctx context.Context, id string) (*ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	s, err := p.sc.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve subscription %s: %w", id, err)
	}
	return fromStripeSubscription(s), nil
}

func (p *StripeProvider) CancelSubscription(ctx context.Context, id string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := p.sc.Subscriptions.Cancel(id, params); err != nil {
		return fmt.Errorf("stripe: cancel subscription %s: %w", id, err)
	}
	return nil
}

func (p *StripeProvider) ResumeSubscription(ctx context.Context, id string) error {
	params := &stripe.SubscriptionResumeParams{}
	params.Context = ctx
	if _, err := p.sc.Subscriptions.Resume(id, params); err != nil {
		return fmt.Errorf("stripe: resume subscription %s: %w", id, err)
	}
	return nil
}

func (p *StripeProvider) createProduct(ctx context.Context, price PriceSpec) (string, error) {
	params := &stripe.ProductParams{Name: stripe.String(price.ProductName)}
	if price.Description != "" {
		params.Description = stripe.String(price.Description)
	}
	params.AddMetadata("plan", price.PlanSlug)
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	prod, err := p.sc.Products.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create product: %w", err)
	}
	return prod.ID, nil
}

func fromStripeSubscription(s *stripe.Subscription) *ProviderSubscription {
	ps := &ProviderSubscription{
		ID:                 s.ID,
		Status:             string(s.Status),
		CurrentPeriodStart: unixTime(s.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(s.CurrentPeriodEnd),
	}
	if s.TrialEnd > 0 {
		t := unixTime(s.TrialEnd)
		ps.TrialEnd = &t
	}
	return ps
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
