// Package bot implements the Telegram command surface: participant
// registration and on-demand schedule analysis for a chat.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"svitlo/core/metrics"
	"svitlo/core/registry"
	"svitlo/infra/logger"
	"svitlo/infra/mqtt"
	"svitlo/internal/inflight"
	"svitlo/yasno"
)

// telegramAPI is the subset of tgbotapi.BotAPI the bot uses. Narrowed for
// testability.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Deps bundles the collaborators the bot needs.
type Deps struct {
	Store    registry.Store
	Source   yasno.Source
	Sink     metrics.Sink
	Notifier mqtt.Publisher
	Log      logger.Logger
}

// Bot routes chat commands to the registry and the schedule analyzer.
type Bot struct {
	api         telegramAPI
	store       registry.Store
	source      yasno.Source
	sink        metrics.Sink
	notifier    mqtt.Publisher
	tracker     *inflight.Tracker
	log         logger.Logger
	pollTimeout int
}

// New authenticates against the Telegram API and builds the bot.
func New(token string, pollTimeoutSeconds int, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newWithAPI(api, pollTimeoutSeconds, deps), nil
}

func newWithAPI(api telegramAPI, pollTimeoutSeconds int, deps Deps) *Bot {
	if deps.Sink == nil {
		deps.Sink = metrics.NopSink{}
	}
	if deps.Notifier == nil {
		deps.Notifier = mqtt.NopPublisher{}
	}
	if deps.Log == nil {
		deps.Log = logger.NopLogger{}
	}
	return &Bot{
		api:         api,
		store:       deps.Store,
		source:      deps.Source,
		sink:        deps.Sink,
		notifier:    deps.Notifier,
		tracker:     inflight.New(),
		log:         deps.Log,
		pollTimeout: pollTimeoutSeconds,
	}
}

// Run polls for updates until the context is cancelled. Each command is
// handled in its own goroutine; duplicate /calculate requests for a chat are
// dropped while one is in flight.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			go b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "help":
		b.handleHelp(msg)
	case "register":
		b.handleRegister(ctx, msg)
	case "unregister":
		b.handleUnregister(ctx, msg)
	case "users":
		b.handleUsers(ctx, msg)
	case "calculate":
		b.handleCalculate(ctx, msg)
	case "debug":
		b.handleDebug(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command, see /help")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Errorf("send to chat %d: %v", chatID, err)
	}
}
