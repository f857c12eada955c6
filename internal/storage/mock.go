package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/splatform/playback-engine/pkg/experience"
	"github.com/splatform/playback-engine/pkg/player"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	mu          sync.RWMutex
	experiences map[string]*experience.Experience
	snapshots   map[uuid.UUID]*player.State
	pingError   error
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		experiences: make(map[string]*experience.Experience),
		snapshots:   make(map[uuid.UUID]*player.State),
	}
}

// AddExperience registers an experience under the given name.
func (m *MockStorage) AddExperience(name string, exp *experience.Experience) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.experiences[name] = exp
}

// SetPingError configures the mock to fail on ping with the given error.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) ListExperiences(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.experiences))
	for name := range m.experiences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockStorage) GetExperience(ctx context.Context, name string) (*experience.Experience, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.experiences[name]
	if !ok {
		return nil, fmt.Errorf("experience %q: %w", name, ErrNotFound)
	}
	return exp, nil
}

func (m *MockStorage) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, state *player.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[sessionID] = state
	return nil
}

func (m *MockStorage) GetSnapshot(ctx context.Context, sessionID uuid.UUID) (*player.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.snapshots[sessionID]
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", sessionID, ErrNotFound)
	}
	return st, nil
}

func (m *MockStorage) DeleteSnapshot(ctx context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, sessionID)
	return nil
}
