// file: internals/features/audits/service/metrics.go
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	auditsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foodaudit",
		Name:      "audits_completed_total",
		Help:      "Completion runs that committed a section-score snapshot.",
	})

	exclusionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodaudit",
		Name:      "exclusion_transitions_total",
		Help:      "Exclusion history entries appended, by action.",
	}, []string{"action"})

	thresholdFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodaudit",
		Name:      "threshold_fallbacks_total",
		Help:      "Passing-grade lookups answered with the default grade.",
	}, []string{"reason"})

	transactionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foodaudit",
		Name:      "transaction_failures_total",
		Help:      "Rolled back mutations, by operation.",
	}, []string{"operation"})
)
