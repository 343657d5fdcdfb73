package events

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/pointledger/internal/config"
)

// Module provides the Publisher selected by EVENTS_DRIVER.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Invoke(registerLifecycle),
)

type publisherParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPublisher(p publisherParams) (Publisher, error) {
	switch p.Config.EventsDriver {
	case config.EventsDriverKafka:
		p.Logger.Info("publishing events to kafka", slog.Any("brokers", p.Config.KafkaBrokers), slog.String("topic", p.Config.KafkaTopic))
		return NewKafkaPublisher(p.Config.KafkaBrokers, p.Config.KafkaTopic), nil
	case config.EventsDriverNATS:
		p.Logger.Info("publishing events to nats", slog.String("subject", p.Config.NATSSubject))
		publisher, err := NewNATSPublisher(p.Config.NATSURL, p.Config.NATSSubject)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case config.EventsDriverNone, "":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", p.Config.EventsDriver)
	}
}

func registerLifecycle(lc fx.Lifecycle, publisher Publisher, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := publisher.Close(); err != nil {
				logger.Warn("publisher close failed", slog.String("error", err.Error()))
			}
			return nil
		},
	})
}
