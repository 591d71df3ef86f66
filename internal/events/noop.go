package events

import (
	"context"
	"errors"
)

// NoOpBus discards events. Used when no event transport is configured so the
// request path never observes a publishing failure.
type NoOpBus struct{}

func NewNoOpBus() *NoOpBus {
	return &NoOpBus{}
}

func (b *NoOpBus) Publish(context.Context, Event) error {
	return nil
}

func (b *NoOpBus) Worker(context.Context, Kind, Handler) error {
	return errors.New("event bus disabled")
}
