package billing

import (
	"time"

	"github.com/ManuelReschke/TaskFox/internal/pkg/logging"
	"github.com/ManuelReschke/TaskFox/internal/pkg/metrics"
	"github.com/sirupsen/logrus"
)

type options struct {
	now      func() time.Time
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	archiver PayloadArchiver
	batch    int
}

// Option configures a Service, Reconciler or Sweeper.
type Option func(*options)

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithArchiver stores raw webhook payloads after they were reconciled.
func WithArchiver(a PayloadArchiver) Option {
	return func(o *options) { o.archiver = a }
}

// WithBatchSize limits how many reconciliation items one sweep handles.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batch = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		log:   logging.Component("billing"),
		batch: 50,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
