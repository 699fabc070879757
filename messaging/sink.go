// Package messaging carries best-effort notifications between services.
// Nothing here takes part in a database transaction.
package messaging

import (
	"context"
	"fmt"

	"event_ticketing/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handler processes one message. A non-empty reply is published on the reply channel.
type Handler func(ctx context.Context, msg string) (string, error)

type Sink interface {
	Publish(ctx context.Context, msg string) error
	// Subscribe feeds every message to h until ctx is cancelled.
	Subscribe(ctx context.Context, h Handler) error
	Close() error
}

// NopSink drops everything. Used when messaging is disabled.
type NopSink struct{}

func (NopSink) Publish(context.Context, string) error { return nil }

func (NopSink) Subscribe(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return nil
}

func (NopSink) Close() error { return nil }

// Open builds the sink selected by cfg.Messaging.Driver.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Sink, error) {
	switch cfg.Messaging.Driver {
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return NewRedisSink(client, cfg.Messaging.Channel, cfg.Messaging.ReplyChannel, log), nil
	case config.DriverKafka:
		return NewKafkaSink(ctx, KafkaConfig{
			Brokers:    cfg.Kafka.Brokers,
			ClientID:   cfg.Kafka.ClientID,
			Group:      cfg.Kafka.ConsumerGroup,
			Topic:      cfg.Messaging.Channel,
			ReplyTopic: cfg.Messaging.ReplyChannel,
		}, log)
	case config.DriverNone, "":
		return NopSink{}, nil
	}
	return nil, fmt.Errorf("unknown messaging driver %q", cfg.Messaging.Driver)
}

func dispatch(ctx context.Context, log *zap.Logger, h Handler, msg string, reply func(context.Context, string) error) {
	log.Debug("received message", zap.String("message", msg))

	resp, err := h(ctx, msg)
	if err != nil {
		log.Error("message handler failed", zap.Error(err))
		return
	}
	if resp == "" {
		return
	}
	if err := reply(ctx, resp); err != nil {
		log.Error("failed to send reply", zap.Error(err))
	}
}
