package service

import (
	"context"

	"event_ticketing/constants"
	"event_ticketing/messaging"

	"go.uber.org/zap"
)

// NewMessageHandler answers availability queries with the event's free ticket count.
// Other message types are only logged.
func NewMessageHandler(events *EventService, log *zap.Logger) messaging.Handler {
	return func(ctx context.Context, msg string) (string, error) {
		env, err := messaging.Decode(msg)
		if err != nil {
			log.Warn("dropping unreadable message", zap.Error(err))
			return "", nil
		}

		switch env.Type {
		case constants.MESSAGE_AVAILABILITY_QUERY:
			var q messaging.AvailabilityQuery
			if err := env.DecodePayload(&q); err != nil {
				return "", err
			}
			n, err := events.GetAvailableTicketCount(ctx, q.EventID)
			if err != nil {
				return "", err
			}
			reply, err := messaging.NewEnvelope(constants.MESSAGE_AVAILABILITY_REPLY, messaging.AvailabilityReply{
				QueryID:   env.ID,
				EventID:   q.EventID,
				Available: n,
			}, events.clock.Now())
			if err != nil {
				return "", err
			}
			return reply.Encode()
		default:
			log.Info("message received", zap.String("type", env.Type), zap.String("id", env.ID))
			return "", nil
		}
	}
}
