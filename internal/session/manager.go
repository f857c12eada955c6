// Package session hosts playback runtimes for the player API: one
// runtime per session, ticked from a single fixed-rate loop, with
// completions reported to the results recorder and final snapshots
// persisted to storage.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/splatform/playback-engine/internal/results"
	"github.com/splatform/playback-engine/internal/storage"
	"github.com/splatform/playback-engine/pkg/events"
	"github.com/splatform/playback-engine/pkg/runtime"
)

// Session is one hosted playback session. ID is stable for the session's
// lifetime, across resets.
type Session struct {
	ID         uuid.UUID
	Experience string
	Runtime    *runtime.Runtime
	CreatedAt  time.Time
}

// Manager owns the hosted sessions and their shared tick loop.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	store    storage.Storage
	recorder results.Recorder // nil disables result recording
	logger   *slog.Logger
	interval time.Duration
}

// NewManager creates a manager ticking sessions every interval.
func NewManager(store storage.Storage, recorder results.Recorder, logger *slog.Logger, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		store:    store,
		recorder: recorder,
		logger:   logger,
		interval: interval,
	}
}

// Run drives every session's tick until ctx is cancelled. Each iteration
// passes the real elapsed wall time since the previous one, so a slow
// loop yields fewer, larger ticks rather than losing playback time.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session tick loop stopped")
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			for _, s := range m.snapshotSessions() {
				s.Runtime.Tick(dt)
			}
		}
	}
}

func (m *Manager) snapshotSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Create loads the named experience and starts a new session for it.
func (m *Manager) Create(ctx context.Context, experienceName string) (*Session, error) {
	exp, err := m.store.GetExperience(ctx, experienceName)
	if err != nil {
		return nil, fmt.Errorf("failed to load experience: %w", err)
	}

	s := &Session{
		ID:         uuid.New(),
		Experience: experienceName,
		Runtime:    runtime.New(m.logger),
		CreatedAt:  time.Now(),
	}

	// Completion is finalized off the event goroutine: handlers run under
	// the runtime lock and must not call back into it.
	s.Runtime.AddHandler(func(e events.Event) {
		switch e.Type {
		case events.TypeGameWon:
			go m.finalize(s, results.OutcomeWon, e)
		case events.TypeGameFailed:
			go m.finalize(s, results.OutcomeFailed, e)
		}
	})

	s.Runtime.Start(exp, exp.Objects, exp.StartPosition)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created", "session", s.ID, "experience", experienceName)
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete stops the session and removes its persisted snapshot.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}

	s.Runtime.Stop()
	if err := m.store.DeleteSnapshot(ctx, id); err != nil {
		m.logger.Warn("Failed to delete session snapshot", "session", id, "error", err)
	}
	m.logger.Info("session deleted", "session", id)
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) finalize(s *Session, outcome string, e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if snap := s.Runtime.Snapshot(); snap != nil {
		if err := m.store.SaveSnapshot(ctx, s.ID, snap); err != nil {
			m.logger.Warn("Failed to save final snapshot", "session", s.ID, "error", err)
		}
	}

	if m.recorder == nil {
		return
	}
	res := results.Result{
		SessionID:   s.ID,
		Experience:  s.Experience,
		Outcome:     outcome,
		Score:       e.Score,
		Elapsed:     e.Elapsed,
		CompletedAt: e.At,
	}
	if err := m.recorder.Record(ctx, res); err != nil {
		m.logger.Error("Failed to record play session", "session", s.ID, "error", err)
	}
}
