package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisSinkRepliesOnReplyChannel(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sink := NewRedisSink(client, "events", "events.replies", zap.NewNop())

	replies := client.Subscribe(ctx, "events.replies")
	defer replies.Close()
	_, err := replies.Receive(ctx)
	require.NoError(t, err)
	ch := replies.Channel()

	handler := func(_ context.Context, msg string) (string, error) {
		switch msg {
		case "quiet":
			return "", nil
		case "broken":
			return "ignored", errors.New("cannot handle")
		}
		return "echo:" + msg, nil
	}
	stop := NewConsumer(sink, handler, zap.NewNop()).Start(ctx)
	defer stop()

	require.Eventually(t, func() bool {
		return client.PubSubNumSub(ctx, "events").Val()["events"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sink.Publish(ctx, "quiet"))
	require.NoError(t, sink.Publish(ctx, "broken"))
	require.NoError(t, sink.Publish(ctx, "hello"))

	select {
	case m := <-ch:
		assert.Equal(t, "echo:hello", m.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no reply received")
	}
}

func TestConsumerStopsOnCancel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sink := NewRedisSink(client, "events", "events.replies", zap.NewNop())
	t.Cleanup(func() { sink.Close() })

	stop := NewConsumer(sink, func(context.Context, string) (string, error) { return "", nil }, zap.NewNop()).
		Start(context.Background())

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestNopSink(t *testing.T) {
	var sink Sink = NopSink{}
	assert.NoError(t, sink.Publish(context.Background(), "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, sink.Subscribe(ctx, nil))
	assert.NoError(t, sink.Close())
}

func TestEnvelope(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	env, err := NewEnvelope("availability.query", AvailabilityQuery{EventID: 5}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, env.ID)

	msg, err := env.Encode()
	require.NoError(t, err)

	got, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, env.ID, got.ID)
	var q AvailabilityQuery
	require.NoError(t, got.DecodePayload(&q))
	assert.Equal(t, uint(5), q.EventID)

	_, err = Decode(`{"id":"1"}`)
	assert.Error(t, err)
	_, err = Decode("not json")
	assert.Error(t, err)
	assert.Error(t, Envelope{Type: "x"}.DecodePayload(&q))
}
