package schedule

import "sort"

// MinutesPerDay is the exclusive upper bound of the day domain.
const MinutesPerDay = 24 * 60

// HourRange is an outage expressed in fractional hours, as delivered by the
// upstream data source (e.g. 8.5 means 08:30).
type HourRange struct {
	Start float64 `json:"start_hour" yaml:"start_hour"`
	End   float64 `json:"end_hour" yaml:"end_hour"`
}

// Outage is a half-open interval [Start,End) in minutes since midnight
// during which power is off.
type Outage struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// AvailabilityWindow is a half-open interval [Start,End) in minutes since
// midnight during which power is on.
type AvailabilityWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// UserSchedule is one participant's outage list for a single day.
// Identity is UserID; Name is carried through for reporting only.
type UserSchedule struct {
	UserID  int64
	Name    string
	Group   string
	Outages []Outage
}

// CommonPeriod is a maximal window during which every analyzed user has
// power. End may be MinutesPerDay.
type CommonPeriod struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ExclusionPeriod is a window during which every user except the tagged one
// has power. Adjacent periods are not merged.
type ExclusionPeriod struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Duration int    `json:"duration_minutes"`
}

// OutageIntervals converts fractional-hour ranges to minute intervals sorted
// by start time. Input order is irrelevant.
func OutageIntervals(ranges []HourRange) []Outage {
	out := make([]Outage, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, Outage{Start: HourToMinutes(r.Start), End: HourToMinutes(r.End)})
	}
	sortOutages(out)
	return out
}

func sortOutages(out []Outage) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
}
