package repository

import "github.com/mergington/activities/internal/domain/model"

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithSeed replaces the default seed table. An empty map keeps the default.
func WithSeed(seed map[string]model.Activity) Option {
	return func(s *InMemoryStore) {
		if len(seed) > 0 {
			s.seed = seed
		}
	}
}

// WithCapacityEnforcement makes AddParticipant reject signups once a roster
// holds MaxParticipants emails.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *InMemoryStore) {
		s.enforceCapacity = enabled
	}
}
