package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics
var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_pipeline_scans_total",
		Help: "Completed monitor scans by kind and status",
	}, []string{"kind", "status"})

	scanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signal_pipeline_scan_duration_seconds",
		Help:    "Duration of monitor scans by kind",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"kind"})

	engagersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_pipeline_engagers_processed_total",
		Help: "Engagers run through the signal engine",
	})

	engagersMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_pipeline_engagers_matched_total",
		Help: "Engagers whose lead matched the ICP filters",
	})

	leadsPushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_pipeline_leads_pushed_total",
		Help: "Leads accepted by the outreach service",
	})

	pushCycleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_pipeline_push_cycle_failures_total",
		Help: "Outbound push cycles that failed",
	})
)
