package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCache is a mock implementation of the Cache interface for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSuggestion(ctx context.Context, key string) (*Suggestion, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Suggestion), args.Error(1)
}

func (m *MockCache) SetSuggestion(ctx context.Context, key string, s *Suggestion, ttl time.Duration) error {
	args := m.Called(ctx, key, s, ttl)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
