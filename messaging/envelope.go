package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(typ string, payload any, now time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return Envelope{ID: uuid.NewString(), Type: typ, OccurredAt: now.UTC(), Payload: raw}, nil
}

func (e Envelope) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (e Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s message has no payload", e.Type)
	}
	return json.Unmarshal(e.Payload, v)
}

func Decode(msg string) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal([]byte(msg), &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if e.Type == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return e, nil
}

type EventCreated struct {
	EventID    uint      `json:"eventId"`
	Name       string    `json:"name"`
	LocationID uint      `json:"locationId"`
	Date       time.Time `json:"date"`
	Tickets    int       `json:"tickets"`
}

type AvailabilityQuery struct {
	EventID uint `json:"eventId"`
}

type AvailabilityReply struct {
	QueryID   string `json:"queryId"`
	EventID   uint   `json:"eventId"`
	Available int    `json:"available"`
}
