package metrics

import "time"

// AnalysisEvent describes one completed schedule analysis.
type AnalysisEvent struct {
	RequestID      string
	ChatID         int64
	Participants   int
	CommonToday    int
	CommonTomorrow int
	Duration       time.Duration
	Time           time.Time
}

// FetchEvent describes one upstream schedule fetch for a group.
type FetchEvent struct {
	Group    string
	OK       bool
	Duration time.Duration
	Time     time.Time
}

// Sink records analysis events for observability purposes.
type Sink interface {
	RecordAnalysis(ev AnalysisEvent) error
	RecordFetch(ev FetchEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordAnalysis(AnalysisEvent) error { return nil }
func (NopSink) RecordFetch(FetchEvent) error       { return nil }
