// Package service provides the activity directory service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	repository "github.com/mergington/activities/internal/adapters/repository"
	"github.com/mergington/activities/internal/domain/model"
	"github.com/mergington/activities/pkg/logger"
	"github.com/mergington/activities/pkg/metrics"
)

// Operation names used in logs, wrapped errors and metric labels.
const (
	opSignup     = "signup"
	opUnregister = "unregister"
	opList       = "list_activities"
	opGet        = "get_activity"
)

// ErrNoStore is returned by Start when the service was built without a store.
var ErrNoStore = errors.New("activity store is nil")

// Service owns the activity directory and implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	logger logger.Logger

	started bool

	signups         atomic.Int64
	unregistrations atomic.Int64
	rejections      atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service around an injected store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get()
}

// Start publishes the initial directory gauges.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}

	s.log().Info(ctx, "starting activity directory service...")
	if err := s.refreshGauges(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	s.started = true
	s.log().Info(ctx, "activity directory service started",
		logger.Int("activities", s.store.Count(ctx)),
		logger.Bool("capacityEnforced", s.capacityEnforced()),
	)
	return nil
}

// Stop marks the service stopped. The store keeps its state.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.log().Info(context.Background(), "activity directory service stopped")
}

// ListActivities returns every activity keyed by name.
func (s *Service) ListActivities(ctx context.Context) (map[string]model.Activity, error) {
	activities, err := s.store.List(ctx)
	if err != nil {
		s.log().Error(ctx, "listing activities failed", logger.Error(err))
		return nil, fmt.Errorf("%s: %w", opList, err)
	}
	return activities, nil
}

// GetActivity returns one activity by exact name.
func (s *Service) GetActivity(ctx context.Context, name string) (model.Activity, error) {
	activity, err := s.store.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, model.ErrActivityNotFound) {
			s.log().Error(ctx, "reading activity failed", logger.String("activity", name), logger.Error(err))
		}
		return model.Activity{}, fmt.Errorf("%s: %w", opGet, err)
	}
	return activity, nil
}

// Signup adds email to the roster of the named activity and returns a
// confirmation message.
func (s *Service) Signup(ctx context.Context, activity, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", s.reject(ctx, opSignup, activity, email, model.ErrEmailRequired)
	}

	updated, err := s.store.AddParticipant(ctx, activity, email)
	if err != nil {
		return "", s.reject(ctx, opSignup, activity, email, err)
	}

	s.signups.Add(1)
	metrics.RecordSignup(activity)
	metrics.UpdateParticipantCount(activity, len(updated.Participants))
	s.log().Info(ctx, "student signed up",
		logger.String("activity", activity),
		logger.String("email", email),
		logger.Int("participants", len(updated.Participants)),
	)
	return fmt.Sprintf("Signed up %s for %s", email, activity), nil
}

// Unregister removes email from the roster of the named activity and
// returns a confirmation message.
func (s *Service) Unregister(ctx context.Context, activity, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", s.reject(ctx, opUnregister, activity, email, model.ErrEmailRequired)
	}

	updated, err := s.store.RemoveParticipant(ctx, activity, email)
	if err != nil {
		return "", s.reject(ctx, opUnregister, activity, email, err)
	}

	s.unregistrations.Add(1)
	metrics.RecordUnregistration(activity)
	metrics.UpdateParticipantCount(activity, len(updated.Participants))
	s.log().Info(ctx, "student unregistered",
		logger.String("activity", activity),
		logger.String("email", email),
		logger.Int("participants", len(updated.Participants)),
	)
	return fmt.Sprintf("Unregistered %s from %s", email, activity), nil
}

// reject records a failed roster operation and wraps err with the operation name.
func (s *Service) reject(ctx context.Context, op, activity, email string, err error) error {
	reason := rejectionReason(err)
	if reason == "error" {
		s.log().Error(ctx, "roster operation failed",
			logger.String("op", op),
			logger.String("activity", activity),
			logger.Error(err),
		)
	} else {
		s.rejections.Add(1)
		metrics.RecordRosterRejection(op, reason)
		s.log().Debug(ctx, "roster operation rejected",
			logger.String("op", op),
			logger.String("activity", activity),
			logger.String("email", email),
			logger.String("reason", reason),
		)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, model.ErrActivityNotFound):
		return "not_found"
	case errors.Is(err, model.ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, model.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, model.ErrActivityFull):
		return "activity_full"
	case errors.Is(err, model.ErrEmailRequired):
		return "email_required"
	default:
		return "error"
	}
}

// RefreshGauges recomputes the directory gauges from the store.
func (s *Service) RefreshGauges(ctx context.Context) error {
	return s.refreshGauges(ctx)
}

func (s *Service) refreshGauges(ctx context.Context) error {
	activities, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	total := 0
	for name, a := range activities {
		metrics.UpdateParticipantCount(name, len(a.Participants))
		total += len(a.Participants)
	}
	metrics.UpdateActivityCount(len(activities))
	metrics.UpdateTotalParticipants(total)
	return nil
}

func (s *Service) capacityEnforced() bool {
	if c, ok := s.store.(interface{ CapacityEnforced() bool }); ok {
		return c.CapacityEnforced()
	}
	return false
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"signups":          s.signups.Load(),
		"unregistrations":  s.unregistrations.Load(),
		"rejections":       s.rejections.Load(),
		"capacityEnforced": false,
	}
	if s.store == nil {
		return stats
	}

	stats["capacityEnforced"] = s.capacityEnforced()
	ctx := context.Background()
	stats["activities"] = s.store.Count(ctx)
	if activities, err := s.store.List(ctx); err == nil {
		total := 0
		for _, a := range activities {
			total += len(a.Participants)
		}
		stats["participants"] = total
	}
	return stats
}
