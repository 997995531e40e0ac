package events

import (
	"encoding/json"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/google/uuid"
)

// Envelope is the wire format shared by every broker
type Envelope struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Key         string          `json:"key"`
	PublishedAt time.Time       `json:"published_at"`
	Payload     json.RawMessage `json:"payload"`
}

// encode wraps event in an Envelope and marshals it
func encode(event coreport.Event, now time.Time) (Envelope, []byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, nil, fmt.Errorf("failed to marshal %s payload: %w", event.EventName(), err)
	}

	envelope := Envelope{
		ID:          uuid.NewString(),
		Name:        event.EventName(),
		Key:         event.PartitionKey(),
		PublishedAt: now,
		Payload:     payload,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return Envelope{}, nil, fmt.Errorf("failed to marshal %s envelope: %w", event.EventName(), err)
	}
	return envelope, body, nil
}
