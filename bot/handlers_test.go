package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"svitlo/core/metrics"
	"svitlo/core/registry"
	"svitlo/core/schedule"
	"svitlo/yasno"
)

type fakeAPI struct {
	mu     sync.Mutex
	sent   []string
	edits  []string
	nextID int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, m.Text)
	case tgbotapi.EditMessageTextConfig:
		f.edits = append(f.edits, m.Text)
	}
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) lastSent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) lastEdit() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		return ""
	}
	return f.edits[len(f.edits)-1]
}

type memStore struct {
	mu      sync.Mutex
	members map[string]registry.Member
	seq     int
}

func newMemStore() *memStore {
	return &memStore{members: make(map[string]registry.Member)}
}

func key(chatID, userID int64) string { return fmt.Sprintf("%d/%d", chatID, userID) }

func (s *memStore) Register(_ context.Context, m registry.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if old, ok := s.members[key(m.ChatID, m.UserID)]; ok {
		m.RegisteredAt = old.RegisteredAt
	} else {
		m.RegisteredAt = m.RegisteredAt.AddDate(0, 0, s.seq)
	}
	s.members[key(m.ChatID, m.UserID)] = m
	return nil
}

func (s *memStore) Member(_ context.Context, chatID, userID int64) (registry.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[key(chatID, userID)]
	if !ok {
		return registry.Member{}, registry.ErrNotFound
	}
	return m, nil
}

func (s *memStore) ChatMembers(_ context.Context, chatID int64) ([]registry.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []registry.Member
	for _, m := range s.members {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (s *memStore) Remove(_ context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, key(chatID, userID))
	return nil
}

func (s *memStore) Chats(context.Context) ([]int64, error) { return nil, nil }
func (s *memStore) Close() error                           { return nil }

type mapSource struct {
	schedules map[string]yasno.GroupSchedule
	err       error
}

func (s *mapSource) Group(_ context.Context, group string) (yasno.GroupSchedule, error) {
	if s.err != nil {
		return yasno.GroupSchedule{}, s.err
	}
	gs, ok := s.schedules[group]
	if !ok {
		return yasno.GroupSchedule{}, &yasno.UnknownGroupError{Group: group}
	}
	return gs, nil
}

type captureSink struct {
	mu       sync.Mutex
	analyses []metrics.AnalysisEvent
	fetches  []metrics.FetchEvent
}

func (c *captureSink) RecordAnalysis(ev metrics.AnalysisEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.analyses = append(c.analyses, ev)
	return nil
}

func (c *captureSink) RecordFetch(ev metrics.FetchEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches = append(c.fetches, ev)
	return nil
}

type captureNotifier struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *captureNotifier) PublishReport(_ int64, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *captureNotifier) Close() {}

func command(chatID, userID int64, text string) *tgbotapi.Message {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i != -1 {
		cmdLen = i
	}
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: userID, FirstName: "Test"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

// sampleSource serves the reference two-user scenario for groups 1.1 and 2.1.
func sampleSource() *mapSource {
	return &mapSource{schedules: map[string]yasno.GroupSchedule{
		"1.1": {
			Group:    "1.1",
			Today:    yasno.DayOutages{Outages: []schedule.HourRange{{Start: 1.5, End: 5}, {Start: 12, End: 15.5}, {Start: 22.5, End: 24}}},
			Tomorrow: yasno.DayOutages{},
		},
		"2.1": {
			Group:    "2.1",
			Today:    yasno.DayOutages{Outages: []schedule.HourRange{{Start: 0, End: 1.5}, {Start: 8.5, End: 12}, {Start: 19, End: 22.5}}},
			Tomorrow: yasno.DayOutages{},
		},
	}}
}

func newTestBot(api *fakeAPI, store registry.Store, source yasno.Source, sink metrics.Sink, notifier *captureNotifier) *Bot {
	deps := Deps{Store: store, Source: source}
	if sink != nil {
		deps.Sink = sink
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return newWithAPI(api, 30, deps)
}

func TestHandleRegister(t *testing.T) {
	api := &fakeAPI{}
	store := newMemStore()
	b := newTestBot(api, store, sampleSource(), nil, nil)
	ctx := context.Background()

	b.handleCommand(ctx, command(10, 1, "/register 1.1 Ivan"))
	require.Contains(t, api.lastSent(), "registered in group 1.1")

	m, err := store.Member(ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, "Ivan", m.Name)

	b.handleCommand(ctx, command(10, 1, "/register"))
	require.Contains(t, api.lastSent(), "usage:")

	b.handleCommand(ctx, command(10, 1, "/register one Ivan"))
	require.Contains(t, api.lastSent(), "not in the expected format")
}

func TestHandleUnregister(t *testing.T) {
	api := &fakeAPI{}
	store := newMemStore()
	b := newTestBot(api, store, sampleSource(), nil, nil)
	ctx := context.Background()

	b.handleCommand(ctx, command(10, 1, "/unregister"))
	require.Contains(t, api.lastSent(), "not registered")

	b.handleCommand(ctx, command(10, 1, "/register 1.1 Ivan"))
	b.handleCommand(ctx, command(10, 1, "/unregister"))
	require.Contains(t, api.lastSent(), "removed from group 1.1")

	_, err := store.Member(ctx, 10, 1)
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestHandleUsers(t *testing.T) {
	api := &fakeAPI{}
	store := newMemStore()
	b := newTestBot(api, store, sampleSource(), nil, nil)
	ctx := context.Background()

	b.handleCommand(ctx, command(10, 1, "/users"))
	require.Contains(t, api.lastSent(), "Nobody is registered")

	b.handleCommand(ctx, command(10, 1, "/register 1.1 Ivan"))
	b.handleCommand(ctx, command(10, 2, "/register 2.1 Olena"))
	b.handleCommand(ctx, command(10, 1, "/users"))
	require.Contains(t, api.lastSent(), "1. Ivan (group 1.1)")
	require.Contains(t, api.lastSent(), "2. Olena (group 2.1)")
}

func TestHandleCalculateNeedsTwo(t *testing.T) {
	api := &fakeAPI{}
	store := newMemStore()
	b := newTestBot(api, store, sampleSource(), nil, nil)
	ctx := context.Background()

	b.handleCommand(ctx, command(10, 1, "/calculate"))
	require.Contains(t, api.lastSent(), "Nobody is registered")

	b.handleCommand(ctx, command(10, 1, "/register 1.1 Ivan"))
	b.handleCommand(ctx, command(10, 1, "/calculate"))
	require.Contains(t, api.lastSent(), "At least 2 participants")
}

func TestHandleCalculate(t *testing.T) {
	api := &fakeAPI{}
	store := newMemStore()
	sink := &captureSink{}
	notifier := &captureNotifier{}
	b := newTestBot(api, store, sampleSource(), sink, notifier)
	ctx := context.Background()

	b.handleCommand(ctx, command(10, 1, "/register 1.1 Ivan"))
	b.handleCommand(ctx, command(10, 2, "/register 2.1 Olena"))
	b.handleCommand(ctx, command(10, 1, "/calculate"))

	report := api.lastEdit()
	require.Contains(t, report, "Ivan (group 1.1)")
	require.Contains(t, report, "Today:")
	require.Contains(t, report, "from 5 to 8:30")
	require.Contains(t, report, "from 15:30 to 19")
	// Neither user has outages tomorrow, so the whole day is common.
	require.Contains(t, report, "Tomorrow:\n  from 0 to 24")

	require.Len(t, sink.analyses, 1)
	require.Equal(t, 2, sink.analyses[0].Participants)
	require.Equal(t, 2, sink.analyses[0].CommonToday)
	require.Len(t, sink.fetches, 2)

	require.Len(t, notifier.payloads, 1)
	var payload reportPayload
	require.NoError(t, json.Unmarshal(notifier.payloads[0], &payload))
	require.Equal(t, int64(10), payload.ChatID)
	require.Equal(t, []reportPeriod{{"05:00", "08:30"}, {"15:30", "19:00"}}, payload.Today)
}

func TestHandleCalculateFetchFailure(t *testing.T) {
	api := &fakeAPI{}
	store := newMemStore()
	b := newTestBot(api, store, &mapSource{err: errors.New("upstream down")}, nil, nil)
	ctx := context.Background()

	b.handleCommand(ctx, command(10, 1, "/register 1.1 Ivan"))
	b.handleCommand(ctx, command(10, 2, "/register 2.1 Olena"))
	b.handleCommand(ctx, command(10, 1, "/calculate"))

	require.Contains(t, api.lastEdit(), "Could not fetch enough schedules")
}

func TestHandleCalculateDeduplicates(t *testing.T) {
	api := &fakeAPI{}
	store := newMemStore()
	b := newTestBot(api, store, sampleSource(), nil, nil)
	ctx := context.Background()

	b.handleCommand(ctx, command(10, 1, "/register 1.1 Ivan"))
	b.handleCommand(ctx, command(10, 2, "/register 2.1 Olena"))

	require.True(t, b.tracker.TryAcquire(10))
	sentBefore := len(api.sent)
	b.handleCommand(ctx, command(10, 1, "/calculate"))
	require.Len(t, api.sent, sentBefore, "duplicate request must be dropped silently")
	b.tracker.Release(10)
}

func TestHandleDebug(t *testing.T) {
	api := &fakeAPI{}
	store := newMemStore()
	b := newTestBot(api, store, sampleSource(), nil, nil)
	ctx := context.Background()

	b.handleCommand(ctx, command(10, 1, "/register 1.1 Ivan"))
	b.handleCommand(ctx, command(10, 1, "/debug"))

	out := api.lastSent()
	require.Contains(t, out, "Ivan (group 1.1)")
	require.Contains(t, out, "01:30 - 05:00")
	require.Contains(t, out, "power windows (3)")
	require.Contains(t, out, "outage stats")
}

func TestHandleUnknownCommand(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, newMemStore(), sampleSource(), nil, nil)
	b.handleCommand(context.Background(), command(10, 1, "/frobnicate"))
	require.Contains(t, api.lastSent(), "Unknown command")
}
