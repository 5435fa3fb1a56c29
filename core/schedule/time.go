package schedule

import (
	"fmt"
	"strconv"
)

// HourToMinutes converts a fractional hour to minutes since midnight.
// The hour part and the fractional minute part are truncated independently,
// so 1.999 yields 119, not 120.
func HourToMinutes(hour float64) int {
	h := int(hour)
	m := int((hour - float64(h)) * 60)
	return h*60 + m
}

// MinutesToClock formats minutes since midnight as zero-padded "HH:MM".
// The caller must supply a value in [0,1440]; 1440 renders as "24:00".
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MinutesToCompact formats minutes since midnight compactly, dropping ":00"
// for on-the-hour values: 90 -> "1:30", 120 -> "2".
func MinutesToCompact(minutes int) string {
	h, m := minutes/60, minutes%60
	if m == 0 {
		return strconv.Itoa(h)
	}
	return fmt.Sprintf("%d:%02d", h, m)
}
