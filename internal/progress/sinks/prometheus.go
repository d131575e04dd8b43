package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/contract-extractor/internal/progress"
)

// PrometheusSink exports batch progress metrics. It owns all collectors for
// item completions, retries and in-flight batches.
type PrometheusSink struct {
	itemsCompleted *prometheus.CounterVec
	retryWaits     prometheus.Counter
	batchesRunning prometheus.Gauge
	itemDuration   *prometheus.HistogramVec
	batchRuntime   prometheus.Histogram
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		itemsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "extractor_items_completed_total",
			Help: "Items resolved, partitioned by result.",
		}, []string{"result"}),
		retryWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "extractor_retry_waits_total",
			Help: "Backoff pauses taken after rate-limited attempts.",
		}),
		batchesRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "extractor_batches_running",
			Help: "Current number of running batches.",
		}),
		itemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "extractor_item_duration_seconds",
			Help:    "Wall time per resolved item, partitioned by result.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"result"}),
		batchRuntime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "extractor_batch_runtime_seconds",
			Help:    "Wall time per completed batch.",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.itemsCompleted,
		s.retryWaits,
		s.batchesRunning,
		s.itemDuration,
		s.batchRuntime,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from one event. Safe for concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, evt progress.Event) error {
	switch evt.Kind {
	case progress.KindBatchStart:
		s.batchesRunning.Inc()
	case progress.KindRetryWait:
		s.retryWaits.Inc()
	case progress.KindItemDone:
		result := "success"
		if !evt.Success {
			result = "failure"
		}
		s.itemsCompleted.WithLabelValues(result).Inc()
		if evt.Dur > 0 {
			s.itemDuration.WithLabelValues(result).Observe(evt.Dur.Seconds())
		}
	case progress.KindBatchDone:
		s.batchesRunning.Dec()
		if evt.Dur > 0 {
			s.batchRuntime.Observe(evt.Dur.Seconds())
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
