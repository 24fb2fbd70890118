package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics tracks the sweep jobs run by the cron worker. The zero
// value is a no-op so the worker can run without a registry in tests.
type CronJobMetrics struct {
	runDuration *prometheus.HistogramVec
	runsTotal   *prometheus.CounterVec
}

// NewCronJobMetrics registers the worker's job metrics. Outcomes land on a
// single counter with a result label so success and failure rates divide
// cleanly in queries.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "qrobotics",
		Subsystem: "cron",
		Name:      "job_duration_seconds",
		Help:      "Wall-clock duration of a sweep job run.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qrobotics",
		Subsystem: "cron",
		Name:      "job_runs_total",
		Help:      "Sweep job runs by outcome.",
	}, []string{"job", "result"})
	reg.MustRegister(runDuration, runsTotal)
	return &CronJobMetrics{runDuration: runDuration, runsTotal: runsTotal}
}

// ObserveDuration records how long the named job ran.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.runDuration == nil {
		return
	}
	c.runDuration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess counts a clean run of the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.runsTotal == nil {
		return
	}
	c.runsTotal.WithLabelValues(normalizeLabel(job), "success").Inc()
}

// IncFailure counts a failed run of the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.runsTotal == nil {
		return
	}
	c.runsTotal.WithLabelValues(normalizeLabel(job), "failure").Inc()
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
