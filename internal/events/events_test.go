package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"prepmate/internal/retry"
)

func TestPublishWithRetryEventualSuccess(t *testing.T) {
	bus := &MockBus{}
	ev := Event{Kind: KindSessionCreated, SessionID: uuid.New()}

	bus.On("Publish", mock.Anything, ev).Return(errors.New("nats down")).Twice()
	bus.On("Publish", mock.Anything, ev).Return(nil).Once()

	err := PublishWithRetry(context.Background(), bus, ev, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	bus.AssertExpectations(t)
}

func TestPublishWithRetryExhausted(t *testing.T) {
	bus := &MockBus{}
	ev := Event{Kind: KindSessionCompleted, SessionID: uuid.New()}

	bus.On("Publish", mock.Anything, ev).Return(errors.New("nats down")).Times(3)

	err := PublishWithRetry(context.Background(), bus, ev, 3, time.Millisecond)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	bus.AssertExpectations(t)
}

func TestPublishWithRetryZeroAttempts(t *testing.T) {
	bus := &MockBus{}
	ev := Event{Kind: KindSessionCreated}

	bus.On("Publish", mock.Anything, ev).Return(nil).Once()

	if err := PublishWithRetry(context.Background(), bus, ev, 0, time.Millisecond); err != nil {
		t.Fatalf("attempts<=0 should coerce to one attempt, got %v", err)
	}
	bus.AssertExpectations(t)
}

func TestPublishBackoffIsCapped(t *testing.T) {
	// Late attempts must sleep the cap, not the raw exponential delay,
	// so a flapping bus cannot stall the request path for seconds.
	for attempt := 0; attempt < 16; attempt++ {
		d := retry.CappedBackoff(attempt, 200*time.Millisecond, maxPublishBackoff)
		if d > maxPublishBackoff {
			t.Fatalf("attempt %d sleeps %v, cap is %v", attempt, d, maxPublishBackoff)
		}
	}
	if d := retry.CappedBackoff(10, 200*time.Millisecond, maxPublishBackoff); d != maxPublishBackoff {
		t.Errorf("attempt 10 sleeps %v, want the cap %v", d, maxPublishBackoff)
	}
}

func TestNoOpBus(t *testing.T) {
	bus := NewNoOpBus()
	if err := bus.Publish(context.Background(), Event{Kind: KindSessionCreated}); err != nil {
		t.Errorf("noop publish should succeed, got %v", err)
	}
	if err := bus.Worker(context.Background(), KindSessionCreated, nil); err == nil {
		t.Error("noop worker should refuse to run")
	}
}
