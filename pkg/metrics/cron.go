package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const cronSubsystem = "cron"

// CronJobMetrics tracks scheduled job outcomes and durations. The zero value
// is a no-op, so callers never need to nil-check before recording.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewCronJobMetrics registers the cron collectors on reg. A nil registerer
// yields a no-op instance, which the tests and dry runs rely on.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: cronSubsystem,
			Name:      "job_duration_seconds",
			Help:      "How long each scheduled job took to run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		success: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: cronSubsystem,
			Name:      "job_success_total",
			Help:      "Scheduled job runs that completed cleanly.",
		}, []string{"job"}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: cronSubsystem,
			Name:      "job_failure_total",
			Help:      "Scheduled job runs that returned an error.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.duration, m.success, m.failure)
	return m
}

// ObserveDuration records how long the named job ran.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess counts a clean run of the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure counts a failed run of the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// normalizeLabel keeps empty label values out of the metric families.
func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
