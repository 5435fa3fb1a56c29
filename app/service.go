// Package app wires configuration into the running service: the registry
// store, metric sinks, the schedule source and the Telegram bot.
package app

import (
	"context"
	"fmt"

	"svitlo/bot"
	"svitlo/config"
	coremetrics "svitlo/core/metrics"
	"svitlo/core/registry"
	"svitlo/infra/logger"
	"svitlo/infra/metrics"
	"svitlo/infra/mqtt"
	infrastore "svitlo/infra/store"
	"svitlo/yasno"
)

// Service holds the assembled components and their lifecycle.
type Service struct {
	Bot         *bot.Bot
	store       registry.Store
	notifier    mqtt.Publisher
	log         logger.Logger
	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	store, err := infrastore.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.Sink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	var notifier mqtt.Publisher = mqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		notifier, err = mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	source, err := yasno.NewSource(cfg.Yasno)
	if err != nil {
		notifier.Close()
		store.Close()
		return nil, fmt.Errorf("schedule source: %w", err)
	}

	b, err := bot.New(cfg.Bot.Token, cfg.Bot.PollTimeoutSeconds, bot.Deps{
		Store:    store,
		Source:   source,
		Sink:     sink,
		Notifier: notifier,
		Log:      logger.New("bot"),
	})
	if err != nil {
		notifier.Close()
		store.Close()
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	return &Service{
		Bot:         b,
		store:       store,
		notifier:    notifier,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    cfg.Metrics.PrometheusAddr,
	}, nil
}

// Run starts the bot and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("bot started")
	return s.Bot.Run(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.notifier.Close()
	return s.store.Close()
}
