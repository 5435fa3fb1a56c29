package schedule

// Availability derives the windows during which power is on as the
// complement of the given outages within [0,MinutesPerDay). The input need
// not be sorted and is not modified. With no outages the whole day is
// returned. Zero-length candidate windows are dropped, so an outage touching
// midnight on either side produces no boundary window and a full-day outage
// yields nil.
func Availability(outages []Outage) []AvailabilityWindow {
	if len(outages) == 0 {
		return []AvailabilityWindow{{Start: 0, End: MinutesPerDay}}
	}

	sorted := make([]Outage, len(outages))
	copy(sorted, outages)
	sortOutages(sorted)

	var windows []AvailabilityWindow
	if sorted[0].Start > 0 {
		windows = append(windows, AvailabilityWindow{Start: 0, End: sorted[0].Start})
	}
	for i := 0; i < len(sorted)-1; i++ {
		gapStart, gapEnd := sorted[i].End, sorted[i+1].Start
		if gapStart < gapEnd {
			windows = append(windows, AvailabilityWindow{Start: gapStart, End: gapEnd})
		}
	}
	if last := sorted[len(sorted)-1]; last.End < MinutesPerDay {
		windows = append(windows, AvailabilityWindow{Start: last.End, End: MinutesPerDay})
	}
	return windows
}

// hasPowerAt reports whether the minute m falls inside one of the windows
// using the half-open rule start <= m < end.
func hasPowerAt(windows []AvailabilityWindow, m int) bool {
	for _, w := range windows {
		if w.Start <= m && m < w.End {
			return true
		}
	}
	return false
}
