package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"svitlo/core/metrics"
	"svitlo/core/registry"
	"svitlo/core/schedule"
	"svitlo/yasno"
)

const startText = `Hi! I analyze power outage schedules for this chat.

Commands:
  /register <group> <name> - join with your outage group
  /calculate - find when everyone has power
  /users - list participants
  /unregister - leave
  /debug - per-user schedule details
  /help - this help

Example: /register 1.1 Ivan`

const helpText = `Commands:

/register <group> <name> - register yourself in an outage group
  (groups look like 1.1, 1.2, 2.1, ...)
/calculate - find the windows when every participant has power,
  for today and tomorrow
/users - list registered participants
/unregister - remove yourself from this chat
/debug - raw outages, availability windows and stats per participant

Registrations are stored on the server.`

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID, startText)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID, helpText)
}

func (b *Bot) handleRegister(ctx context.Context, msg *tgbotapi.Message) {
	group, name, err := parseRegister(msg.CommandArguments())
	if err != nil {
		b.reply(msg.Chat.ID, err.Error())
		return
	}
	m := registry.Member{
		ChatID: msg.Chat.ID,
		UserID: msg.From.ID,
		Name:   name,
		Group:  group,
	}
	if err := b.store.Register(ctx, m); err != nil {
		b.log.Errorf("register %d/%d: %v", msg.Chat.ID, msg.From.ID, err)
		b.reply(msg.Chat.ID, "Registration failed, try again later")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Hi %s! You are registered in group %s.\nUse /calculate to analyze the schedules.", name, group))
}

func (b *Bot) handleUnregister(ctx context.Context, msg *tgbotapi.Message) {
	m, err := b.store.Member(ctx, msg.Chat.ID, msg.From.ID)
	if errors.Is(err, registry.ErrNotFound) {
		b.reply(msg.Chat.ID, "You are not registered in this chat")
		return
	}
	if err == nil {
		err = b.store.Remove(ctx, msg.Chat.ID, msg.From.ID)
	}
	if err != nil {
		b.log.Errorf("unregister %d/%d: %v", msg.Chat.ID, msg.From.ID, err)
		b.reply(msg.Chat.ID, "Removal failed, try again later")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("You were removed from group %s", m.Group))
}

func (b *Bot) handleUsers(ctx context.Context, msg *tgbotapi.Message) {
	members, err := b.store.ChatMembers(ctx, msg.Chat.ID)
	if err != nil {
		b.log.Errorf("list members %d: %v", msg.Chat.ID, err)
		b.reply(msg.Chat.ID, "Could not list participants, try again later")
		return
	}
	if len(members) == 0 {
		b.reply(msg.Chat.ID, "Nobody is registered in this chat yet")
		return
	}
	var sb strings.Builder
	sb.WriteString("Registered participants:\n")
	for i, m := range members {
		fmt.Fprintf(&sb, "%d. %s (group %s)\n", i+1, m.Name, m.Group)
	}
	b.reply(msg.Chat.ID, sb.String())
}

// fetchResult carries one member's fetched schedule or the fetch error.
type fetchResult struct {
	member   registry.Member
	schedule yasno.GroupSchedule
	err      error
}

func (b *Bot) fetchSchedules(ctx context.Context, members []registry.Member) []fetchResult {
	results := make([]fetchResult, len(members))
	var wg sync.WaitGroup
	for i, m := range members {
		wg.Add(1)
		go func(i int, m registry.Member) {
			defer wg.Done()
			start := time.Now()
			gs, err := b.source.Group(ctx, m.Group)
			if serr := b.sink.RecordFetch(metrics.FetchEvent{
				Group:    m.Group,
				OK:       err == nil,
				Duration: time.Since(start),
				Time:     time.Now(),
			}); serr != nil {
				b.log.Warnf("record fetch: %v", serr)
			}
			results[i] = fetchResult{member: m, schedule: gs, err: err}
		}(i, m)
	}
	wg.Wait()
	return results
}

func (b *Bot) handleCalculate(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !b.tracker.TryAcquire(chatID) {
		b.log.Debugf("dropping duplicate /calculate for chat %d", chatID)
		return
	}
	defer b.tracker.Release(chatID)

	members, err := b.store.ChatMembers(ctx, chatID)
	if err != nil {
		b.log.Errorf("list members %d: %v", chatID, err)
		b.reply(chatID, "Could not read the registry, try again later")
		return
	}
	if len(members) == 0 {
		b.reply(chatID, "Nobody is registered in this chat!\nUse /register <group> <name> first")
		return
	}
	if len(members) == 1 {
		b.reply(chatID, "At least 2 participants are needed for an analysis")
		return
	}

	working, err := b.api.Send(tgbotapi.NewMessage(chatID, "Analyzing schedules..."))
	if err != nil {
		b.log.Errorf("send to chat %d: %v", chatID, err)
		return
	}

	requestID := uuid.NewString()
	started := time.Now()
	b.log.Debugw("analysis started", map[string]any{
		"request_id":   requestID,
		"chat_id":      chatID,
		"participants": len(members),
	})

	var today, tomorrow []schedule.UserSchedule
	var failures []string
	for _, r := range b.fetchSchedules(ctx, members) {
		if r.err != nil {
			b.log.Errorf("fetch group %s for %s: %v", r.member.Group, r.member.Name, r.err)
			failures = append(failures, fmt.Sprintf("%s: %v", r.member.Name, r.err))
			continue
		}
		today = append(today, userSchedule(r.member, r.schedule.Today))
		tomorrow = append(tomorrow, userSchedule(r.member, r.schedule.Tomorrow))
	}

	if len(today) < 2 {
		text := "Could not fetch enough schedules:\n"
		for i, f := range failures {
			if i == 3 {
				break
			}
			text += "  - " + f + "\n"
		}
		b.edit(chatID, working.MessageID, text)
		return
	}

	commonToday := schedule.Intersect(today)
	commonTomorrow := schedule.Intersect(tomorrow)
	b.edit(chatID, working.MessageID, buildReport(members, commonToday, commonTomorrow))

	if err := b.sink.RecordAnalysis(metrics.AnalysisEvent{
		RequestID:      requestID,
		ChatID:         chatID,
		Participants:   len(members),
		CommonToday:    len(commonToday),
		CommonTomorrow: len(commonTomorrow),
		Duration:       time.Since(started),
		Time:           time.Now(),
	}); err != nil {
		b.log.Warnf("record analysis: %v", err)
	}
	b.publishReport(chatID, requestID, commonToday, commonTomorrow)
}

func (b *Bot) handleDebug(ctx context.Context, msg *tgbotapi.Message) {
	members, err := b.store.ChatMembers(ctx, msg.Chat.ID)
	if err != nil {
		b.log.Errorf("list members %d: %v", msg.Chat.ID, err)
		b.reply(msg.Chat.ID, "Could not read the registry, try again later")
		return
	}
	if len(members) == 0 {
		b.reply(msg.Chat.ID, "Nobody is registered in this chat")
		return
	}

	var sb strings.Builder
	for _, r := range b.fetchSchedules(ctx, members) {
		fmt.Fprintf(&sb, "%s (group %s)\n", r.member.Name, r.member.Group)
		if r.err != nil {
			fmt.Fprintf(&sb, "  fetch error: %v\n\n", r.err)
			continue
		}
		outages := schedule.OutageIntervals(r.schedule.Today.Outages)
		fmt.Fprintf(&sb, "  today's confirmed outages (%d):\n", len(outages))
		for _, o := range outages {
			fmt.Fprintf(&sb, "    %s - %s\n", schedule.MinutesToClock(o.Start), schedule.MinutesToClock(o.End))
		}
		windows := schedule.Availability(outages)
		fmt.Fprintf(&sb, "  power windows (%d):\n", len(windows))
		for _, w := range windows {
			fmt.Fprintf(&sb, "    %s - %s\n", schedule.MinutesToClock(w.Start), schedule.MinutesToClock(w.End))
		}
		st := schedule.Stats(outages)
		fmt.Fprintf(&sb, "  outage stats: total %dm, mean %.0fm, median %.0fm\n\n",
			st.TotalMinutes, st.MeanMinutes, st.MedianMinutes)
	}
	for _, chunk := range chunkText(strings.TrimRight(sb.String(), "\n"), telegramMessageLimit) {
		b.reply(msg.Chat.ID, chunk)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Errorf("edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

func (b *Bot) publishReport(chatID int64, requestID string, today, tomorrow []schedule.CommonPeriod) {
	payload, err := json.Marshal(reportPayload{
		ChatID:      chatID,
		RequestID:   requestID,
		GeneratedAt: time.Now().UTC(),
		Today:       toReportPeriods(today),
		Tomorrow:    toReportPeriods(tomorrow),
	})
	if err != nil {
		b.log.Errorf("marshal report: %v", err)
		return
	}
	if err := b.notifier.PublishReport(chatID, payload); err != nil {
		b.log.Warnf("publish report for chat %d: %v", chatID, err)
	}
}

func userSchedule(m registry.Member, day yasno.DayOutages) schedule.UserSchedule {
	return schedule.UserSchedule{
		UserID:  m.UserID,
		Name:    m.Name,
		Group:   m.Group,
		Outages: schedule.OutageIntervals(day.Outages),
	}
}
