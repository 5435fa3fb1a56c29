package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "svitlo/core/metrics"
)

// PromSink records analysis events in Prometheus metrics.
type PromSink struct {
	analyses      *prometheus.CounterVec
	analysisTime  prometheus.Histogram
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewPromSink registers analysis metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	analyses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_analyses_total",
		Help: "Total number of completed schedule analyses",
	}, []string{"has_common_today", "has_common_tomorrow"})
	analysisTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_analysis_duration_seconds",
		Help:    "Time spent fetching schedules and computing intersections",
		Buckets: prometheus.DefBuckets,
	})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_fetches_total",
		Help: "Total number of upstream schedule fetches",
	}, []string{"group", "ok"})
	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_fetch_duration_seconds",
		Help:    "Upstream schedule fetch latency",
		Buckets: prometheus.DefBuckets,
	})

	if err := reg.Register(analyses); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			analyses = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(analysisTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			analysisTime = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fetches); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fetches = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fetchDuration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fetchDuration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		analyses:      analyses,
		analysisTime:  analysisTime,
		fetches:       fetches,
		fetchDuration: fetchDuration,
	}, nil
}

// RecordAnalysis increments the analysis counter and observes its duration.
func (s *PromSink) RecordAnalysis(ev coremetrics.AnalysisEvent) error {
	s.analyses.WithLabelValues(
		strconv.FormatBool(ev.CommonToday > 0),
		strconv.FormatBool(ev.CommonTomorrow > 0),
	).Inc()
	s.analysisTime.Observe(ev.Duration.Seconds())
	return nil
}

// RecordFetch counts the fetch per group and outcome.
func (s *PromSink) RecordFetch(ev coremetrics.FetchEvent) error {
	s.fetches.WithLabelValues(ev.Group, strconv.FormatBool(ev.OK)).Inc()
	s.fetchDuration.Observe(ev.Duration.Seconds())
	return nil
}
