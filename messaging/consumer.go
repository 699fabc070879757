package messaging

import (
	"context"

	"go.uber.org/zap"
)

// Consumer runs a handler against a sink as a task of its own, independent of any request.
type Consumer struct {
	sink    Sink
	handler Handler
	log     *zap.Logger
}

func NewConsumer(sink Sink, handler Handler, log *zap.Logger) *Consumer {
	return &Consumer{sink: sink, handler: handler, log: log.With(zap.String("component", "consumer"))}
}

// Run blocks until ctx is cancelled or the sink gives up.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("consumer started")
	defer c.log.Info("consumer stopped")
	return c.sink.Subscribe(ctx, c.handler)
}

// Start runs the consumer in the background. The returned stop cancels it and waits for it to return.
func (c *Consumer) Start(parent context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := c.Run(ctx); err != nil {
			c.log.Error("consumer failed", zap.Error(err))
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
