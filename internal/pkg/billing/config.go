package billing

import (
	"time"

	"github.com/ManuelReschke/TaskFox/internal/pkg/env"
)

// Config holds the billing provider credentials and sweeper settings.
type Config struct {
	SecretKey        string
	WebhookSecret    string
	WebhookTolerance time.Duration
	SweepSchedule    string
	SweepBatchSize   int
}

// ConfigFromEnv reads STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET,
// STRIPE_WEBHOOK_TOLERANCE, BILLING_SWEEP_SCHEDULE and BILLING_SWEEP_BATCH.
func ConfigFromEnv() Config {
	return Config{
		SecretKey:        env.GetEnv("STRIPE_SECRET_KEY", ""),
		WebhookSecret:    env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		WebhookTolerance: env.GetDuration("STRIPE_WEBHOOK_TOLERANCE", 5*time.Minute),
		SweepSchedule:    env.GetEnv("BILLING_SWEEP_SCHEDULE", "@every 10m"),
		SweepBatchSize:   env.GetInt("BILLING_SWEEP_BATCH", 50),
	}
}

func (c Config) ProviderEnabled() bool {
	return c.SecretKey != ""
}
