package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"prepmate/internal/retry"
)

// Kind enumerates session lifecycle events.
type Kind string

const (
	KindSessionCreated   Kind = "session.created"
	KindSessionCompleted Kind = "session.completed"
)

// Event notifies downstream consumers about a session transition. Payload
// carries the session document fragment relevant to the event.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Kind       Kind            `json:"kind"`
	SessionID  uuid.UUID       `json:"session_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type Handler func(context.Context, Event) error

// Bus exposes a minimal contract to publish and consume lifecycle events.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Worker(ctx context.Context, kind Kind, handler Handler) error
}

// maxPublishBackoff bounds the sleep between publish attempts so a slow bus
// cannot stall the request path.
const maxPublishBackoff = 2 * time.Second

// PublishWithRetry attempts to publish with retries and exponential backoff.
// Publishing is fire-and-forget for the request path; callers log the final
// error and move on.
func PublishWithRetry(ctx context.Context, bus Bus, ev Event, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := bus.Publish(ctx, ev); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.CappedBackoff(attempt, base, maxPublishBackoff)):
		}
	}
	return nil
}
