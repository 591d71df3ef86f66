package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const subjectPrefix = "prep."

// NewNATS constructs a thin NATS-based event bus.
func NewNATS(log *slog.Logger, nc *nats.Conn) Bus {
	return &natsBus{log: log, nc: nc}
}

type natsBus struct {
	log *slog.Logger
	nc  *nats.Conn
}

func (b *natsBus) Publish(_ context.Context, ev Event) error {
	if ev.Kind == "" {
		return errors.New("event kind required")
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.nc.Publish(subjectPrefix+string(ev.Kind), body)
}

func (b *natsBus) Worker(ctx context.Context, kind Kind, handler Handler) error {
	subject := subjectPrefix + string(kind)
	group := "workers-" + string(kind)
	sub, err := b.nc.QueueSubscribe(subject, group, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			b.log.Error("failed to decode event", "subject", subject, "err", err)
			return
		}
		if err := handler(ctx, ev); err != nil {
			// Events are notifications, not tasks; a failed handler is
			// logged, not re-queued.
			b.log.Error("event handler failed", "kind", ev.Kind, "session_id", ev.SessionID, "err", err)
		}
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}
