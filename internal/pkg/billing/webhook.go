package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/TaskFox/app/models"
	"github.com/ManuelReschke/TaskFox/app/repository"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PayloadArchiver keeps a copy of raw webhook bodies outside the database.
type PayloadArchiver interface {
	ArchiveWebhook(ctx context.Context, provider, eventID string, receivedAt time.Time, payload []byte) error
}

// Reconciler applies signed provider events to local subscriptions.
type Reconciler struct {
	repos    *repository.Repositories
	verifier SignatureVerifier
	opts     options
}

func NewReconciler(repos *repository.Repositories, verifier SignatureVerifier, opts ...Option) *Reconciler {
	return &Reconciler{repos: repos, verifier: verifier, opts: buildOptions(opts)}
}

// subscriptionEvent is the part of an event payload reconciliation needs.
type subscriptionEvent struct {
	subscriptionID string
	status         string
	periodStart    int64
	periodEnd      int64
	canceledAt     int64
}

// Handle verifies and applies one delivery. Recording the event and changing
// subscription state happen in one transaction; on error neither is kept.
func (r *Reconciler) Handle(ctx context.Context, payload []byte, signatureHeader string) (*WebhookResult, error) {
	if err := r.verifier.Verify(payload, signatureHeader); err != nil {
		r.opts.metrics.ObserveWebhookEvent("unknown", "invalid_signature")
		r.opts.log.WithError(err).Warn("rejected webhook with invalid signature")
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	eventID := event.ID
	if eventID == "" {
		sum := sha256.Sum256(payload)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}
	result := &WebhookResult{EventID: eventID, EventType: normalizeEventType(string(event.Type))}
	log := r.opts.log.WithFields(logrus.Fields{
		"event_id":   eventID,
		"event_type": string(event.Type),
	})

	if result.EventType == "" {
		result.Outcome = OutcomeIgnored
		r.opts.metrics.ObserveWebhookEvent(string(event.Type), OutcomeIgnored)
		log.Debug("ignoring unhandled webhook event type")
		return result, nil
	}

	subEvent, err := decodeSubscriptionEvent(result.EventType, event.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	receivedAt := r.opts.now()
	err = r.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		created, stored, err := tx.WebhookEvent.CreateIfNotExists(&models.BillingWebhookEvent{
			Provider:               models.BillingProviderStripe,
			ProviderEventID:        eventID,
			EventType:              result.EventType,
			ProviderSubscriptionID: subEvent.subscriptionID,
			Payload:                datatypes.JSON(payload),
			ReceivedAt:             receivedAt,
		})
		if err != nil {
			return fmt.Errorf("record event: %w", err)
		}
		if !created {
			result.Outcome = OutcomeDuplicate
			return nil
		}

		outcome, err := r.dispatch(tx, result.EventType, subEvent, log)
		if err != nil {
			return err
		}
		result.Outcome = outcome
		return tx.WebhookEvent.MarkProcessed(stored.ID)
	})
	if err != nil {
		r.opts.metrics.ObserveWebhookEvent(result.EventType, "failed")
		log.WithError(err).Error("webhook reconciliation failed")
		return nil, fmt.Errorf("%w: %w", ErrWebhookProcessingFailed, err)
	}

	r.opts.metrics.ObserveWebhookEvent(result.EventType, result.Outcome)
	if result.Outcome != OutcomeDuplicate {
		r.archive(ctx, eventID, receivedAt, payload, log)
	}
	log.WithField("outcome", result.Outcome).Info("webhook processed")
	return result, nil
}

func (r *Reconciler) dispatch(tx *repository.Repositories, eventType string, ev subscriptionEvent, log logrus.FieldLogger) (string, error) {
	switch eventType {
	case EventSubscriptionUpdated:
		sub, err := findByProviderID(tx, ev.subscriptionID)
		if err != nil || sub == nil {
			return OutcomeNoMatch, err
		}
		if status, ok := mapProviderStatus(ev.status); ok {
			sub.Status = status
		} else {
			log.WithField("provider_status", ev.status).Warn("unknown provider status, keeping local status")
		}
		if ev.periodStart > 0 {
			sub.CurrentPeriodStart = time.Unix(ev.periodStart, 0).UTC()
		}
		if ev.periodEnd > 0 {
			sub.CurrentPeriodEnd = time.Unix(ev.periodEnd, 0).UTC()
		}
		if err := tx.Subscription.Save(sub); err != nil {
			return "", fmt.Errorf("apply subscription update: %w", err)
		}
		return OutcomeApplied, nil

	case EventSubscriptionDeleted:
		sub, err := findByProviderID(tx, ev.subscriptionID)
		if err != nil || sub == nil {
			return OutcomeNoMatch, err
		}
		sub.Status = models.SubscriptionStatusCancelled
		if sub.CancelledAt == nil {
			cancelledAt := r.opts.now()
			if ev.canceledAt > 0 {
				cancelledAt = time.Unix(ev.canceledAt, 0).UTC()
			}
			sub.CancelledAt = &cancelledAt
		}
		if err := tx.Subscription.Save(sub); err != nil {
			return "", fmt.Errorf("apply subscription deletion: %w", err)
		}
		return OutcomeApplied, nil

	default:
		// subscription.created, payment.succeeded and payment.failed carry no
		// state change yet; the stored event is the record.
		return OutcomeAccepted, nil
	}
}

func (r *Reconciler) archive(ctx context.Context, eventID string, receivedAt time.Time, payload []byte, log logrus.FieldLogger) {
	if r.opts.archiver == nil {
		return
	}
	if err := r.opts.archiver.ArchiveWebhook(context.WithoutCancel(ctx), models.BillingProviderStripe, eventID, receivedAt, payload); err != nil {
		log.WithError(err).Warn("failed to archive webhook payload")
	}
}

func findByProviderID(tx *repository.Repositories, id string) (*models.UserSubscription, error) {
	if id == "" {
		return nil, nil
	}
	sub, err := tx.Subscription.GetByProviderSubscriptionID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

func decodeSubscriptionEvent(eventType string, data *stripe.EventData) (subscriptionEvent, error) {
	var ev subscriptionEvent
	if data == nil || len(data.Raw) == 0 {
		return ev, errors.New("event has no data object")
	}

	switch eventType {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(data.Raw, &s); err != nil {
			return ev, err
		}
		ev.subscriptionID = s.ID
		ev.status = string(s.Status)
		ev.periodStart = s.CurrentPeriodStart
		ev.periodEnd = s.CurrentPeriodEnd
		ev.canceledAt = s.CanceledAt
	case EventPaymentSucceeded, EventPaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(data.Raw, &inv); err != nil {
			return ev, err
		}
		if inv.Subscription != nil {
			ev.subscriptionID = inv.Subscription.ID
		}
	}
	return ev, nil
}
