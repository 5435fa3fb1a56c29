// Package yasno fetches planned power-outage schedules from the Yasno
// blackout service and reduces them to the per-day outage lists consumed by
// the schedule core. Only confirmed ("Definite") slots are kept; tentative
// slots never reach the analyzer.
package yasno

import (
	"fmt"
	"sort"

	"svitlo/core/schedule"
)

// Slot is one entry of the upstream planned-outages payload. Start and End
// are minutes since midnight.
type Slot struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
}

// slotDefinite marks a confirmed outage; anything else is tentative.
const slotDefinite = "Definite"

type wireDay struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

type wireGroup struct {
	Today    wireDay `json:"today"`
	Tomorrow wireDay `json:"tomorrow"`
}

// DayOutages is one day's confirmed outages for a group, in the
// fractional-hour form the schedule core converts from.
type DayOutages struct {
	Date    string               `json:"date"`
	Outages []schedule.HourRange `json:"outages"`
}

// GroupSchedule is the two-day outage schedule for one group.
type GroupSchedule struct {
	City     string     `json:"city"`
	Group    string     `json:"group"`
	Today    DayOutages `json:"today"`
	Tomorrow DayOutages `json:"tomorrow"`
}

// UnknownGroupError reports a group missing from the upstream payload.
type UnknownGroupError struct {
	Group     string
	Available []string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("group %s not found, available groups: %v", e.Group, e.Available)
}

func definiteOutages(day wireDay) []schedule.HourRange {
	var outages []schedule.HourRange
	for _, s := range day.Slots {
		if s.Type != slotDefinite {
			continue
		}
		outages = append(outages, schedule.HourRange{
			Start: float64(s.Start) / 60,
			End:   float64(s.End) / 60,
		})
	}
	return outages
}

func groupSchedule(city, group string, g wireGroup) GroupSchedule {
	return GroupSchedule{
		City:  city,
		Group: group,
		Today: DayOutages{
			Date:    g.Today.Date,
			Outages: definiteOutages(g.Today),
		},
		Tomorrow: DayOutages{
			Date:    g.Tomorrow.Date,
			Outages: definiteOutages(g.Tomorrow),
		},
	}
}

func groupNames(groups map[string]wireGroup) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
