package schedule

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// OutageStats summarizes one user's outages for a day.
type OutageStats struct {
	Count         int
	TotalMinutes  int
	MeanMinutes   float64
	MedianMinutes float64
}

// Stats computes summary statistics over the outage durations. Intervals
// with non-positive length are ignored.
func Stats(outages []Outage) OutageStats {
	durations := make([]float64, 0, len(outages))
	total := 0
	for _, o := range outages {
		d := o.End - o.Start
		if d <= 0 {
			continue
		}
		durations = append(durations, float64(d))
		total += d
	}
	if len(durations) == 0 {
		return OutageStats{}
	}
	sort.Float64s(durations)
	return OutageStats{
		Count:         len(durations),
		TotalMinutes:  total,
		MeanMinutes:   stat.Mean(durations, nil),
		MedianMinutes: stat.Quantile(0.5, stat.Empirical, durations, nil),
	}
}
