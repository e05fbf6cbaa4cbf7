package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the TaskFox Prometheus collectors.
type Metrics struct {
	BillingOperationsTotal  *prometheus.CounterVec
	WebhookEventsTotal      *prometheus.CounterVec
	EntitlementDenialsTotal *prometheus.CounterVec
	PlanCacheLookupsTotal   *prometheus.CounterVec
	ReconciliationOpenItems prometheus.Gauge
}

// NewMetrics creates the collectors and registers them when registry is non-nil.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		BillingOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskfox_billing_operations_total",
				Help: "Subscription lifecycle operations by operation and result",
			},
			[]string{"op", "result"},
		),
		WebhookEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskfox_billing_webhook_events_total",
				Help: "Billing webhook deliveries by normalised type and outcome",
			},
			[]string{"type", "outcome"},
		),
		EntitlementDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskfox_entitlement_denials_total",
				Help: "Entitlement checks that denied an action",
			},
			[]string{"kind"},
		),
		PlanCacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskfox_plan_cache_lookups_total",
				Help: "Plan catalog cache lookups by result",
			},
			[]string{"result"},
		),
		ReconciliationOpenItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "taskfox_billing_reconciliation_open_items",
				Help: "Billing reconciliation items waiting for a successful retry",
			},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.BillingOperationsTotal,
			m.WebhookEventsTotal,
			m.EntitlementDenialsTotal,
			m.PlanCacheLookupsTotal,
			m.ReconciliationOpenItems,
		)
	}
	return m
}

// Nop returns unregistered collectors for tests and tools that do not expose /metrics.
func Nop() *Metrics {
	return NewMetrics(nil)
}

// ObserveBillingOperation records op with result "ok" or "error".
func (m *Metrics) ObserveBillingOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.BillingOperationsTotal.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObserveWebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) ObserveEntitlementDenial(kind string) {
	if m == nil {
		return
	}
	m.EntitlementDenialsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObservePlanCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.PlanCacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SetReconciliationOpenItems(n int64) {
	if m == nil {
		return
	}
	m.ReconciliationOpenItems.Set(float64(n))
}
