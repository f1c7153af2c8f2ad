package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteEvaluationsTotal counts cart evaluations by outcome.
	QuoteEvaluationsTotal *prometheus.CounterVec
	// PriceGuardTotal counts purchase-time guard outcomes.
	PriceGuardTotal *prometheus.CounterVec
	// OrderResolutionTotal counts final-total resolutions by basis.
	OrderResolutionTotal *prometheus.CounterVec
	// DiscountAppliedTotal accumulates discount amounts granted at checkout.
	DiscountAppliedTotal prometheus.Counter
	// RuleReplayLatency records legacy rule-replay latency in milliseconds.
	RuleReplayLatency prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_evaluations_total",
			Help:      "Count of cart pricing evaluations by outcome.",
		}, []string{"surface", "result"})
		PriceGuardTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_guard_total",
			Help:      "Count of purchase-time price guard outcomes.",
		}, []string{"result"})
		OrderResolutionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_resolution_total",
			Help:      "Count of order total resolutions by basis.",
		}, []string{"basis"})
		DiscountAppliedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_applied_total",
			Help:      "Sum of discount amounts granted at checkout.",
		})
		RuleReplayLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rule_replay_duration_ms",
			Help:      "Latency for legacy rule replays in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		})

		mustRegisterCollector(reg, QuoteEvaluationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteEvaluationsTotal = v
			}
		})
		mustRegisterCollector(reg, PriceGuardTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PriceGuardTotal = v
			}
		})
		mustRegisterCollector(reg, OrderResolutionTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrderResolutionTotal = v
			}
		})
		mustRegisterCollector(reg, DiscountAppliedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				DiscountAppliedTotal = v
			}
		})
		mustRegisterCollector(reg, RuleReplayLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				RuleReplayLatency = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
