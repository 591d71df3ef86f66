package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing.
// Used as a fallback when Redis is not configured - all operations succeed
// but no actual caching occurs (always cache miss).
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetSuggestion(ctx context.Context, key string) (*Suggestion, error) {
	return nil, nil
}

func (c *NoOpCache) SetSuggestion(ctx context.Context, key string, s *Suggestion, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
