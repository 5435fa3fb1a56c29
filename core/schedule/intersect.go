package schedule

import "sort"

// Intersect returns the maximal windows during which every user has power.
// No schedules yield nil and a single schedule yields that user's
// availability unchanged. The "need at least two participants" rule is a
// policy of the calling layer, not enforced here.
//
// For two or more schedules the result is computed by a boundary sweep: the
// day is cut at every availability boundary of every user and each sub
// interval is classified by sampling its left edge. Sampling one minute is
// enough because each user's availability windows and outages exactly
// partition the day, so power state is constant inside a sub interval.
func Intersect(schedules []UserSchedule) []CommonPeriod {
	switch len(schedules) {
	case 0:
		return nil
	case 1:
		var periods []CommonPeriod
		for _, w := range Availability(schedules[0].Outages) {
			periods = append(periods, CommonPeriod{Start: w.Start, End: w.End})
		}
		return periods
	}

	availability := make([][]AvailabilityWindow, len(schedules))
	points := map[int]struct{}{0: {}, MinutesPerDay: {}}
	for i, s := range schedules {
		availability[i] = Availability(s.Outages)
		for _, w := range availability[i] {
			points[w.Start] = struct{}{}
			points[w.End] = struct{}{}
		}
	}
	cuts := make([]int, 0, len(points))
	for p := range points {
		cuts = append(cuts, p)
	}
	sort.Ints(cuts)

	var periods []CommonPeriod
	for i := 0; i < len(cuts)-1; i++ {
		p, q := cuts[i], cuts[i+1]
		everyone := true
		for _, windows := range availability {
			if !hasPowerAt(windows, p) {
				everyone = false
				break
			}
		}
		if !everyone {
			continue
		}
		if n := len(periods); n > 0 && periods[n-1].End == p {
			periods[n-1].End = q
		} else {
			periods = append(periods, CommonPeriod{Start: p, End: q})
		}
	}
	return periods
}
