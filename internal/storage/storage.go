package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/splatform/playback-engine/pkg/experience"
	"github.com/splatform/playback-engine/pkg/player"
)

// ErrNotFound is returned when a requested document or snapshot does not
// exist.
var ErrNotFound = errors.New("not found")

// Storage serves experience documents and persists session snapshots.
// Experiences are static authored content; snapshots are the player state
// saved for completed or suspended sessions.
type Storage interface {
	// ListExperiences returns the available experience names, sorted.
	ListExperiences(ctx context.Context) ([]string, error)

	// GetExperience loads an experience document by name.
	GetExperience(ctx context.Context, name string) (*experience.Experience, error)

	// SaveSnapshot persists a session's player state.
	SaveSnapshot(ctx context.Context, sessionID uuid.UUID, state *player.State) error

	// GetSnapshot loads a previously saved player state.
	GetSnapshot(ctx context.Context, sessionID uuid.UUID) (*player.State, error)

	// DeleteSnapshot removes a saved player state. Deleting a missing
	// snapshot is not an error.
	DeleteSnapshot(ctx context.Context, sessionID uuid.UUID) error

	Ping(ctx context.Context) error
	Close() error
}
