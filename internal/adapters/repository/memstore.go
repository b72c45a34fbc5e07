package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mergington/activities/internal/domain/model"
	"github.com/mergington/activities/pkg/metrics"
)

// Store operation names used as metric labels.
const (
	opList   = "list"
	opGet    = "get"
	opAdd    = "add_participant"
	opRemove = "remove_participant"
)

// InMemoryStore keeps the directory in a map guarded by a RWMutex.
// Every value handed out is a deep copy.
type InMemoryStore struct {
	mu         sync.RWMutex
	activities map[string]*model.Activity

	seed            map[string]model.Activity
	enforceCapacity bool
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore builds a store populated from the seed table.
func NewInMemoryStore(_ context.Context, opts ...Option) (*InMemoryStore, error) {
	s := &InMemoryStore{
		seed: DefaultActivities(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.activities = make(map[string]*model.Activity, len(s.seed))
	for name, a := range s.seed {
		if err := validateSeed(name, a); err != nil {
			return nil, err
		}
		c := a.Clone()
		s.activities[name] = &c
	}
	s.seed = nil
	return s, nil
}

func validateSeed(name string, a model.Activity) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty activity name", ErrInvalidSeed)
	}
	if a.MaxParticipants < 0 {
		return fmt.Errorf("%w: %q has negative max_participants", ErrInvalidSeed, name)
	}
	seen := make(map[string]struct{}, len(a.Participants))
	for _, email := range a.Participants {
		if _, dup := seen[email]; dup {
			return fmt.Errorf("%w: %q lists %s twice", ErrInvalidSeed, name, email)
		}
		seen[email] = struct{}{}
	}
	return nil
}

// CapacityEnforced reports whether signups past MaxParticipants are rejected.
func (s *InMemoryStore) CapacityEnforced() bool {
	return s.enforceCapacity
}

// List implements Store.
func (s *InMemoryStore) List(ctx context.Context) (map[string]model.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer observe(opList, time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.Activity, len(s.activities))
	for name, a := range s.activities {
		out[name] = a.Clone()
	}
	return out, nil
}

// Get implements Store.
func (s *InMemoryStore) Get(ctx context.Context, name string) (model.Activity, error) {
	if err := ctx.Err(); err != nil {
		return model.Activity{}, err
	}
	defer observe(opGet, time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[name]
	if !ok {
		return model.Activity{}, model.ErrActivityNotFound
	}
	return a.Clone(), nil
}

// AddParticipant implements Store.
func (s *InMemoryStore) AddParticipant(ctx context.Context, name, email string) (model.Activity, error) {
	if err := ctx.Err(); err != nil {
		return model.Activity{}, err
	}
	defer observe(opAdd, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return model.Activity{}, model.ErrActivityNotFound
	}
	if a.HasParticipant(email) {
		return model.Activity{}, model.ErrAlreadySignedUp
	}
	if s.enforceCapacity && a.IsFull() {
		return model.Activity{}, model.ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	return a.Clone(), nil
}

// RemoveParticipant implements Store.
func (s *InMemoryStore) RemoveParticipant(ctx context.Context, name, email string) (model.Activity, error) {
	if err := ctx.Err(); err != nil {
		return model.Activity{}, err
	}
	defer observe(opRemove, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return model.Activity{}, model.ErrActivityNotFound
	}
	i := slices.Index(a.Participants, email)
	if i < 0 {
		return model.Activity{}, model.ErrNotRegistered
	}
	a.Participants = slices.Delete(a.Participants, i, i+1)
	return a.Clone(), nil
}

// Count implements Store.
func (s *InMemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activities)
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
