package messaging

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSink publishes on a redis pub/sub channel and replies on a second one.
type RedisSink struct {
	client  *redis.Client
	channel string
	reply   string
	log     *zap.Logger
}

func NewRedisSink(client *redis.Client, channel, replyChannel string, log *zap.Logger) *RedisSink {
	return &RedisSink{
		client:  client,
		channel: channel,
		reply:   replyChannel,
		log:     log.With(zap.String("sink", "redis"), zap.String("channel", channel)),
	}
}

func (s *RedisSink) Publish(ctx context.Context, msg string) error {
	return s.client.Publish(ctx, s.channel, msg).Err()
}

func (s *RedisSink) Subscribe(ctx context.Context, h Handler) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	// wait for the subscription to be confirmed before reading
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			dispatch(ctx, s.log, h, m.Payload, s.publishReply)
		}
	}
}

func (s *RedisSink) publishReply(ctx context.Context, msg string) error {
	return s.client.Publish(ctx, s.reply, msg).Err()
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
