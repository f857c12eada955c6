// Package runtime is the stateful playback container: it owns the player
// snapshot, the interaction cooldown table and the event stream, and it
// drives win/fail evaluation from the host's frame tick.
//
// All mutation funnels through Runtime methods and is serialized by an
// internal lock. Event handlers are invoked synchronously while that lock
// is held, so handlers must not call back into the Runtime; hand work off
// to another goroutine instead.
package runtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/splatform/playback-engine/pkg/events"
	"github.com/splatform/playback-engine/pkg/experience"
	"github.com/splatform/playback-engine/pkg/player"
)

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhasePlaying  Phase = "playing"
	PhasePaused   Phase = "paused"
	PhaseComplete Phase = "complete"
)

// ActiveMessage is the message currently shown on the HUD, if any.
type ActiveMessage struct {
	Title    string        `json:"title,omitempty"`
	Message  string        `json:"message"`
	Style    string        `json:"style,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	ShownAt  time.Time     `json:"shown_at"`
}

// Runtime is the playback store. The zero value is not usable; use New.
type Runtime struct {
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time

	phase   Phase
	exp     *experience.Experience
	objects []experience.PlacedObject
	index   map[string]*experience.PlacedObject
	start   *player.Vec3

	// session changes on every Start so deferred timers from an earlier
	// session can detect they are stale.
	session uuid.UUID

	state        *player.State
	interactions map[string]*InteractionState
	dispatcher   *events.Dispatcher

	activeMessage *ActiveMessage
	messageGen    int

	timers []*time.Timer
}

// New returns an idle runtime. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		logger:     logger,
		now:        time.Now,
		phase:      PhaseIdle,
		dispatcher: events.NewDispatcher(),
	}
}

// Start begins a fresh playback session. The object list is passed
// separately from the experience so the studio can playtest unsaved
// placements; pass exp.Objects for normal play. All prior session state,
// including pending timers and the event log, is discarded. Registered
// event handlers survive across sessions.
func (r *Runtime) Start(exp *experience.Experience, objects []experience.PlacedObject, start *player.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startLocked(exp, objects, start)
}

func (r *Runtime) startLocked(exp *experience.Experience, objects []experience.PlacedObject, start *player.Vec3) {
	r.cancelTimersLocked()
	r.session = uuid.New()

	r.exp = exp
	r.objects = objects
	r.index = make(map[string]*experience.PlacedObject, len(objects))
	for i := range objects {
		r.index[objects[i].ID] = &objects[i]
	}
	r.start = start

	st := player.NewState(start, exp.Scoring.StartingScore)
	st.StartTime = r.now()
	r.state = st

	r.interactions = make(map[string]*InteractionState)
	r.dispatcher.ResetLog()
	r.activeMessage = nil
	r.messageGen++
	r.phase = PhasePlaying

	r.logger.Info("playback started",
		"experience", exp.Name,
		"session", r.session,
		"objects", len(objects))
}

// Pause suspends ticking. No-op unless playing.
func (r *Runtime) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying {
		return
	}
	r.phase = PhasePaused
	next := r.state.Clone()
	next.IsPaused = true
	r.state = next
}

// Resume continues a paused session. No-op unless paused.
func (r *Runtime) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePaused {
		return
	}
	r.phase = PhasePlaying
	next := r.state.Clone()
	next.IsPaused = false
	r.state = next
}

// Complete moves the session to its terminal phase. Further ticks are
// no-ops. Usually invoked internally when a win or fail lands, but the
// host may force it (e.g. on a quit-to-menu).
func (r *Runtime) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completeLocked()
}

func (r *Runtime) completeLocked() {
	if r.phase == PhaseIdle || r.phase == PhaseComplete {
		return
	}
	r.phase = PhaseComplete
	next := r.state.Clone()
	next.IsPaused = true
	r.state = next
}

// Reset restarts the session with the parameters given to Start. No-op
// when idle.
func (r *Runtime) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exp == nil {
		return
	}
	r.startLocked(r.exp, r.objects, r.start)
}

// Stop tears the session down entirely, cancelling pending timers and
// returning to idle. The event log is retained until the next Start.
func (r *Runtime) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseIdle {
		return
	}
	r.cancelTimersLocked()
	r.session = uuid.Nil
	r.exp = nil
	r.objects = nil
	r.index = nil
	r.start = nil
	r.state = nil
	r.interactions = nil
	r.activeMessage = nil
	r.messageGen++
	r.phase = PhaseIdle
}

// Tick advances playback by dt: elapsed time moves forward, win and fail
// conditions are re-evaluated from scratch, and newly satisfied condition
// ids are emitted edge-triggered. A tick where the win requirement first
// holds emits game_won and completes the session; likewise game_failed
// for fail conditions. When both land in the same tick the win is
// reported and the fail branch is skipped (win is evaluated first).
// No-op while paused, complete or idle.
func (r *Runtime) Tick(dt time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying || r.exp == nil {
		return
	}

	next := r.state.Clone()
	next.Elapsed += dt

	winMet := r.exp.EvaluateWinConditions(next)
	failMet := r.exp.EvaluateFailConditions(next)

	prevWin := r.state.WinConditionsMet
	prevFail := r.state.FailConditionsMet
	next.WinConditionsMet = winMet
	next.FailConditionsMet = failMet

	wonNow := false
	failedNow := false
	if !next.HasWon && !next.HasFailed {
		if r.allRequiredWinMet(winMet) {
			next.HasWon = true
			wonNow = true
		} else if len(failMet) > 0 {
			next.HasFailed = true
			next.IsAlive = false
			failedNow = true
		}
	}

	r.state = next

	for _, id := range newlyMet(prevWin, winMet) {
		r.emit(events.Event{Type: events.TypeWinConditionMet, ConditionID: id})
	}
	for _, id := range newlyMet(prevFail, failMet) {
		r.emit(events.Event{Type: events.TypeFailConditionMet, ConditionID: id})
	}

	if wonNow {
		r.logger.Info("session won", "session", r.session, "score", next.Score, "elapsed", next.Elapsed)
		r.emit(events.Event{Type: events.TypeGameWon, Score: next.Score, Elapsed: next.Elapsed})
		r.completeLocked()
	} else if failedNow {
		r.logger.Info("session failed", "session", r.session, "score", next.Score, "elapsed", next.Elapsed)
		r.emit(events.Event{Type: events.TypeGameFailed, Score: next.Score, Elapsed: next.Elapsed})
		r.completeLocked()
	}
}

// allRequiredWinMet reports whether every enabled, required win condition
// id is in met. A session with no enabled required win conditions never
// auto-wins.
func (r *Runtime) allRequiredWinMet(met []string) bool {
	metSet := make(map[string]bool, len(met))
	for _, id := range met {
		metSet[id] = true
	}
	required := 0
	for i := range r.exp.WinConditions {
		c := &r.exp.WinConditions[i]
		if !c.Enabled || !c.Required {
			continue
		}
		required++
		if !metSet[c.ID] {
			return false
		}
	}
	return required > 0
}

func newlyMet(prev, cur []string) []string {
	if len(cur) == 0 {
		return nil
	}
	old := make(map[string]bool, len(prev))
	for _, id := range prev {
		old[id] = true
	}
	var fresh []string
	for _, id := range cur {
		if !old[id] {
			fresh = append(fresh, id)
		}
	}
	return fresh
}

// Snapshot returns the current player state, or nil when idle. The
// returned value is never mutated after publication.
func (r *Runtime) Snapshot() *player.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Phase returns the lifecycle phase.
func (r *Runtime) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// IsComplete reports whether the session reached its terminal phase.
func (r *Runtime) IsComplete() bool {
	return r.Phase() == PhaseComplete
}

// Session returns the current session token, or uuid.Nil when idle.
func (r *Runtime) Session() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Experience returns the document the session was started with, or nil.
func (r *Runtime) Experience() *experience.Experience {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exp
}

// ActiveMessage returns the message currently displayed, or nil.
func (r *Runtime) ActiveMessage() *ActiveMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeMessage
}

// Events returns a copy of the retained event log, oldest first.
func (r *Runtime) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dispatcher.Events()
}

// AddHandler registers an event handler. See the package comment for the
// re-entrancy contract.
func (r *Runtime) AddHandler(h events.Handler) events.HandlerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dispatcher.AddHandler(h)
}

// RemoveHandler unregisters a handler.
func (r *Runtime) RemoveHandler(id events.HandlerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatcher.RemoveHandler(id)
}

func (r *Runtime) emit(e events.Event) {
	e.At = r.now()
	r.dispatcher.Emit(e)
}

// afterFunc schedules fn on the runtime lock after d, guarded by the
// current session token. The timer is cancelled on Stop and Reset; if it
// still fires against a newer session, fn is skipped.
func (r *Runtime) afterFunc(d time.Duration, fn func()) {
	session := r.session
	t := time.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.session != session {
			return
		}
		fn()
	})
	r.timers = append(r.timers, t)
}

func (r *Runtime) cancelTimersLocked() {
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}
