package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

type KafkaConfig struct {
	Brokers          []string
	ClientID         string
	Group            string
	Topic            string
	ReplyTopic       string
	SessionTimeout   time.Duration
	RebalanceTimeout time.Duration
}

// KafkaSink produces to one topic and consumes it as part of a consumer group.
// Offsets are committed after each polled batch has been handled.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	reply  string
	log    *zap.Logger
}

func NewKafkaSink(ctx context.Context, cfg KafkaConfig, log *zap.Logger) (*KafkaSink, error) {
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.RebalanceTimeout == 0 {
		cfg.RebalanceTimeout = 60 * time.Second
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
		kgo.SessionTimeout(cfg.SessionTimeout),
		kgo.RebalanceTimeout(cfg.RebalanceTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka: %w", err)
	}

	return &KafkaSink{
		client: client,
		topic:  cfg.Topic,
		reply:  cfg.ReplyTopic,
		log:    log.With(zap.String("sink", "kafka"), zap.String("topic", cfg.Topic)),
	}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, msg string) error {
	return s.produce(ctx, s.topic, msg)
}

func (s *KafkaSink) Subscribe(ctx context.Context, h Handler) error {
	reply := func(ctx context.Context, msg string) error {
		return s.produce(ctx, s.reply, msg)
	}

	for {
		fetches := s.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			s.log.Error("fetch error", zap.String("topic", topic), zap.Int32("partition", partition), zap.Error(err))
		})
		fetches.EachRecord(func(r *kgo.Record) {
			dispatch(ctx, s.log, h, string(r.Value), reply)
		})

		if err := s.client.CommitUncommittedOffsets(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("failed to commit offsets", zap.Error(err))
		}
	}
}

func (s *KafkaSink) produce(ctx context.Context, topic, msg string) error {
	return s.client.ProduceSync(ctx, &kgo.Record{Topic: topic, Value: []byte(msg)}).FirstErr()
}

func (s *KafkaSink) Close() error {
	s.client.Close()
	return nil
}
