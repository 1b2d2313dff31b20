package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suitability_evaluations_total",
		Help: "Number of suitability evaluations by result status.",
	}, []string{"status"})

	domainMismatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suitability_domain_mismatches_total",
		Help: "Number of inputs that fell outside their variable's domain.",
	}, []string{"variable"})

	ruleBaseReloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suitability_rule_base_reloads_total",
		Help: "Number of rule bases swapped into the running scorer.",
	})

	ruleBaseReloadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suitability_rule_base_reload_failures_total",
		Help: "Number of rejected rule-base reloads.",
	})

	evaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "suitability_evaluation_seconds",
		Help:    "Time spent evaluating one input vector.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
)
