package schedule

// Exclusions computes, for each user, the windows where all other users have
// power while that user is in outage. Fewer than two schedules yield nil.
// Periods are emitted per (common window, outage) overlap and are not merged,
// so callers must not assume they are maximal.
func Exclusions(schedules []UserSchedule) []ExclusionPeriod {
	if len(schedules) < 2 {
		return nil
	}

	var results []ExclusionPeriod
	for i, excluded := range schedules {
		outages := make([]Outage, len(excluded.Outages))
		copy(outages, excluded.Outages)
		sortOutages(outages)

		others := make([]UserSchedule, 0, len(schedules)-1)
		others = append(others, schedules[:i]...)
		others = append(others, schedules[i+1:]...)
		common := Intersect(others)

		for _, cw := range common {
			for _, o := range outages {
				start := max(cw.Start, o.Start)
				end := min(cw.End, o.End)
				if start < end {
					results = append(results, ExclusionPeriod{
						UserID:   excluded.UserID,
						Name:     excluded.Name,
						Start:    start,
						End:      end,
						Duration: end - start,
					})
				}
			}
		}
	}
	return results
}
