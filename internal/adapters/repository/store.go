// Package repository defines the activity directory store and its in-memory implementation.
package repository

import (
	"context"

	"github.com/mergington/activities/internal/domain/model"
)

// Store provides read/write access to the activity directory.
type Store interface {
	// List returns a copy of every activity keyed by name.
	List(ctx context.Context) (map[string]model.Activity, error)

	// Get returns a copy of one activity.
	// Returns model.ErrActivityNotFound if the name is unknown.
	Get(ctx context.Context, name string) (model.Activity, error)

	// AddParticipant appends email to the roster of the named activity and
	// returns the updated activity. Returns model.ErrActivityNotFound,
	// model.ErrAlreadySignedUp, or model.ErrActivityFull when capacity is enforced.
	AddParticipant(ctx context.Context, name, email string) (model.Activity, error)

	// RemoveParticipant removes email from the roster of the named activity and
	// returns the updated activity. Returns model.ErrActivityNotFound or
	// model.ErrNotRegistered.
	RemoveParticipant(ctx context.Context, name, email string) (model.Activity, error)

	// Count returns the number of activities.
	Count(ctx context.Context) int
}
