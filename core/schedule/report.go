package schedule

import (
	"fmt"
	"strings"
)

// FormatReport renders the common periods for one day as a multi-line block
// headed by label. An empty list produces a single "no shared power" line.
func FormatReport(label string, periods []CommonPeriod) string {
	if len(periods) == 0 {
		return fmt.Sprintf("%s: no time when everyone has power", label)
	}
	lines := make([]string, 0, len(periods)+1)
	lines = append(lines, label+":")
	for _, p := range periods {
		lines = append(lines, fmt.Sprintf("  from %s to %s", MinutesToCompact(p.Start), MinutesToCompact(p.End)))
	}
	return strings.Join(lines, "\n")
}
