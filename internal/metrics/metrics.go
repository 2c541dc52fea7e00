// Package metrics exposes Prometheus collectors for the pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobsPublishedTotal   *prometheus.CounterVec
	jobsClaimedTotal     prometheus.Counter
	jobsReleasedTotal    prometheus.Counter
	jobsDiscardedTotal   prometheus.Counter
	notifyFailuresTotal  prometheus.Counter
	dispatchesTotal      *prometheus.CounterVec
	scrapeCyclesTotal    *prometheus.CounterVec
	queueDepthMain       prometheus.Gauge
	queueDepthProcessing prometheus.Gauge

	once sync.Once
)

// Init registers the collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		jobsPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "first_jobs_published_total",
				Help: "Job envelopes published to the queue, labeled by category.",
			},
			[]string{"category"},
		)
		jobsClaimedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "first_jobs_claimed_total",
			Help: "Envelopes claimed from the queue.",
		})
		jobsReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "first_jobs_released_total",
			Help: "Envelopes released after successful processing.",
		})
		jobsDiscardedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "first_jobs_discarded_total",
			Help: "Malformed envelopes dropped from the processing list.",
		})
		notifyFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "first_notify_failures_total",
			Help: "Notifier invocations that failed and left the envelope in processing.",
		})
		dispatchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "first_dispatches_total",
				Help: "Per-subscriber notification dispatches, labeled by platform and outcome.",
			},
			[]string{"platform", "outcome"},
		)
		scrapeCyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "first_scrape_cycles_total",
				Help: "Scrape cycles run, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		queueDepthMain = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "first_queue_depth_main",
			Help: "Current length of the main queue list.",
		})
		queueDepthProcessing = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "first_queue_depth_processing",
			Help: "Current length of the processing queue list.",
		})
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePublished increments the published counter for a category.
func ObservePublished(category string) {
	jobsPublishedTotal.WithLabelValues(category).Inc()
}

// ObserveClaimed increments the claimed counter.
func ObserveClaimed() { jobsClaimedTotal.Inc() }

// ObserveReleased increments the released counter.
func ObserveReleased() { jobsReleasedTotal.Inc() }

// ObserveDiscarded increments the malformed-discard counter.
func ObserveDiscarded() { jobsDiscardedTotal.Inc() }

// ObserveNotifyFailure increments the notifier failure counter.
func ObserveNotifyFailure() { notifyFailuresTotal.Inc() }

// ObserveDispatch records one per-subscriber dispatch outcome.
func ObserveDispatch(platform string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	dispatchesTotal.WithLabelValues(platform, outcome).Inc()
}

// ObserveScrapeCycle records one scrape cycle outcome.
func ObserveScrapeCycle(outcome string) {
	scrapeCyclesTotal.WithLabelValues(outcome).Inc()
}

// SetQueueDepths updates the queue depth gauges.
func SetQueueDepths(mainLen, processingLen int64) {
	queueDepthMain.Set(float64(mainLen))
	queueDepthProcessing.Set(float64(processingLen))
}
