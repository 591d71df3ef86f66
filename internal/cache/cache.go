package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"prepmate/internal/store"
)

// Cache provides suggestion result caching. Identical intakes (same patient,
// symptoms and language) reuse the model's earlier reply instead of paying
// for another call.
type Cache interface {
	// GetSuggestion retrieves a cached suggestion by key.
	// Returns nil if not found.
	GetSuggestion(ctx context.Context, key string) (*Suggestion, error)

	// SetSuggestion stores a suggestion with TTL.
	SetSuggestion(ctx context.Context, key string, s *Suggestion, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// Suggestion is the cached outcome of the suggest step.
type Suggestion struct {
	Summary   string           `json:"summary"`
	Questions []store.Question `json:"questions"`
}

// GenerateCacheKey hashes the suggest inputs into a stable key.
func GenerateCacheKey(info store.PatientInfo, symptoms, language string) string {
	payload, _ := json.Marshal(struct {
		Info     store.PatientInfo `json:"info"`
		Symptoms string            `json:"symptoms"`
		Language string            `json:"language"`
	}{info, symptoms, language})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
