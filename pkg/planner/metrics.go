package planner

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	plannerOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ntx_planner_operations_total",
			Help: "Number of transaction operations requested, by operation.",
		},
		[]string{"operation"},
	)
	plannerOperationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ntx_planner_operation_errors_total",
			Help: "Number of transaction operations that failed, by operation.",
		},
		[]string{"operation"},
	)

	plannerMembers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ntx_planner_members",
			Help: "Number of distinct packages in the current transaction.",
		},
	)
	plannerLoops = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ntx_planner_loops",
			Help: "Number of dependency loops found by the last sort.",
		},
	)

	plannerCommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ntx_planner_commits_total",
			Help: "Total number of transactions committed.",
		},
	)

	plannerSortDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ntx_planner_sort_duration_seconds",
			Help:    "Time taken to order a transaction.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		plannerOperationsTotal,
		plannerOperationErrorsTotal,
		plannerMembers,
		plannerLoops,
		plannerCommitsTotal,
		plannerSortDuration,
	)
}

func observe(op string, err error) {
	plannerOperationsTotal.WithLabelValues(op).Inc()
	if err != nil {
		plannerOperationErrorsTotal.WithLabelValues(op).Inc()
	}
}
