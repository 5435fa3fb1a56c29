package bot

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"svitlo/core/registry"
	"svitlo/core/schedule"
)

// telegramMessageLimit is the maximum length Telegram accepts per message.
const telegramMessageLimit = 4096

var groupPattern = regexp.MustCompile(`^\d+\.\d+$`)

// parseRegister splits "/register <group> <name>" arguments and validates
// the group format (e.g. "1.1").
func parseRegister(args string) (group, name string, err error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", "", fmt.Errorf("usage: /register <group> <name>, e.g. /register 1.1 Ivan")
	}
	group = fields[0]
	if !groupPattern.MatchString(group) {
		return "", "", fmt.Errorf("group %q is not in the expected format, e.g. 1.1", group)
	}
	return group, strings.Join(fields[1:], " "), nil
}

// buildReport assembles the /calculate response: participant list followed
// by the common power windows for today and tomorrow.
func buildReport(members []registry.Member, today, tomorrow []schedule.CommonPeriod) string {
	var sb strings.Builder
	sb.WriteString("Participants:\n")
	for _, m := range members {
		fmt.Fprintf(&sb, "  - %s (group %s)\n", m.Name, m.Group)
	}
	sb.WriteString("\n")
	sb.WriteString(schedule.FormatReport("Today", today))
	sb.WriteString("\n\n")
	sb.WriteString(schedule.FormatReport("Tomorrow", tomorrow))
	return sb.String()
}

// chunkText splits text into pieces no longer than limit, cutting at line
// boundaries where possible.
func chunkText(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n')
		if cut <= 0 {
			cut = limit
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

// reportPeriod is one window of the published report payload.
type reportPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// reportPayload is the JSON document published to MQTT after an analysis.
type reportPayload struct {
	ChatID      int64          `json:"chat_id"`
	RequestID   string         `json:"request_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Today       []reportPeriod `json:"today"`
	Tomorrow    []reportPeriod `json:"tomorrow"`
}

func toReportPeriods(periods []schedule.CommonPeriod) []reportPeriod {
	out := make([]reportPeriod, 0, len(periods))
	for _, p := range periods {
		out = append(out, reportPeriod{
			Start: schedule.MinutesToClock(p.Start),
			End:   schedule.MinutesToClock(p.End),
		})
	}
	return out
}
