package runtime

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/splatform/playback-engine/pkg/events"
	"github.com/splatform/playback-engine/pkg/experience"
	"github.com/splatform/playback-engine/pkg/player"
)

// scoreHuntExperience wins by reaching 50 points via a clickable statue.
func scoreHuntExperience() *experience.Experience {
	return &experience.Experience{
		Name: "Score Hunt",
		WinConditions: []experience.Condition{
			{ID: "reach_50", Enabled: true, Required: true, Config: experience.ConditionConfig{
				Type:        experience.ConditionReachScore,
				TargetScore: 50,
			}},
		},
		Objects: []experience.PlacedObject{
			{
				ID: "statue",
				Interactions: []experience.Interaction{
					{
						ID:      "inspect",
						Enabled: true,
						Trigger: experience.Trigger{Type: experience.TriggerClick},
						Actions: []experience.Action{
							{Type: experience.ActionAddScore, Amount: 25},
						},
					},
				},
			},
		},
	}
}

func startRuntime(t *testing.T, exp *experience.Experience) *Runtime {
	t.Helper()
	rt := New(nil)
	rt.Start(exp, exp.Objects, exp.StartPosition)
	return rt
}

func eventTypes(evs []events.Event) []events.Type {
	out := make([]events.Type, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

func filterEvents(evs []events.Event, typ events.Type) []events.Event {
	var out []events.Event
	for _, e := range evs {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestStartInitializesSession(t *testing.T) {
	exp := scoreHuntExperience()
	exp.Scoring.StartingScore = 100
	start := player.Vec3{X: 2, Y: 1.6, Z: -3}
	exp.StartPosition = &start

	rt := startRuntime(t, exp)

	if rt.Phase() != PhasePlaying {
		t.Errorf("Phase() = %v, want playing", rt.Phase())
	}
	if rt.Session() == uuid.Nil {
		t.Error("expected a session token")
	}
	st := rt.Snapshot()
	if st.Score != 100 {
		t.Errorf("Score = %d, want 100", st.Score)
	}
	if st.Position != start {
		t.Errorf("Position = %+v, want %+v", st.Position, start)
	}
	if !st.IsAlive || st.IsPaused {
		t.Error("expected alive and unpaused")
	}
}

func TestIdleRuntimeIsInert(t *testing.T) {
	rt := New(nil)

	rt.Tick(time.Second)
	rt.AddScore(10)
	rt.TriggerInteraction("inspect", "statue")
	rt.Pause()
	rt.Reset()
	rt.Stop()

	if rt.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", rt.Phase())
	}
	if rt.Snapshot() != nil {
		t.Error("Snapshot() != nil on idle runtime")
	}
	if len(rt.Events()) != 0 {
		t.Errorf("Events() = %v, want none", rt.Events())
	}
}

func TestPauseResume(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())

	rt.Pause()
	if rt.Phase() != PhasePaused {
		t.Fatalf("Phase() = %v, want paused", rt.Phase())
	}
	if !rt.Snapshot().IsPaused {
		t.Error("snapshot not marked paused")
	}

	// Ticks and movement are no-ops while paused.
	rt.Tick(time.Minute)
	rt.Move(1, 0, time.Second)
	if got := rt.Snapshot().Elapsed; got != 0 {
		t.Errorf("Elapsed advanced while paused: %v", got)
	}

	// Resume on a playing session is a no-op, as is pause on paused.
	rt.Pause()
	rt.Resume()
	if rt.Phase() != PhasePlaying {
		t.Fatalf("Phase() = %v, want playing", rt.Phase())
	}
	rt.Resume()
	if rt.Phase() != PhasePlaying {
		t.Errorf("Phase() after double resume = %v", rt.Phase())
	}

	rt.Tick(2 * time.Second)
	if got := rt.Snapshot().Elapsed; got != 2*time.Second {
		t.Errorf("Elapsed = %v, want 2s", got)
	}
}

func TestResetStartsFreshSession(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())
	firstSession := rt.Session()

	rt.AddScore(10)
	rt.Tick(5 * time.Second)

	rt.Reset()

	if rt.Session() == firstSession {
		t.Error("Reset kept the old session token")
	}
	st := rt.Snapshot()
	if st.Score != 0 || st.Elapsed != 0 {
		t.Errorf("state after reset = score %d elapsed %v, want zeros", st.Score, st.Elapsed)
	}
	if len(rt.Events()) != 0 {
		t.Errorf("event log survived reset: %v", eventTypes(rt.Events()))
	}
	if rt.Phase() != PhasePlaying {
		t.Errorf("Phase() = %v, want playing", rt.Phase())
	}
}

func TestStopReturnsToIdle(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())
	rt.AddScore(5)

	rt.Stop()

	if rt.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", rt.Phase())
	}
	if rt.Snapshot() != nil || rt.Experience() != nil {
		t.Error("expected state and experience cleared")
	}
	if rt.Session() != uuid.Nil {
		t.Error("expected nil session token")
	}
	// The log is retained until the next Start.
	if len(rt.Events()) == 0 {
		t.Error("expected event log retained after Stop")
	}
}

func TestHandlersSurviveAcrossSessions(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())
	fired := 0
	rt.AddHandler(func(events.Event) { fired++ })

	rt.AddScore(1)
	rt.Reset()
	rt.AddScore(1)

	if fired != 2 {
		t.Errorf("handler fired %d times, want 2", fired)
	}
}

func TestTickWinsSession(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())
	var log []events.Event
	rt.AddHandler(func(e events.Event) { log = append(log, e) })

	rt.AddScore(50)
	if rt.IsComplete() {
		t.Fatal("score alone must not complete the session; the tick decides")
	}

	rt.Tick(time.Second)

	if !rt.IsComplete() {
		t.Fatal("expected complete after winning tick")
	}
	st := rt.Snapshot()
	if !st.HasWon || st.HasFailed {
		t.Errorf("HasWon=%v HasFailed=%v, want won", st.HasWon, st.HasFailed)
	}
	if !reflect.DeepEqual(st.WinConditionsMet, []string{"reach_50"}) {
		t.Errorf("WinConditionsMet = %v", st.WinConditionsMet)
	}

	types := eventTypes(log)
	wantTail := []events.Type{events.TypeWinConditionMet, events.TypeGameWon}
	if len(types) < 2 || !reflect.DeepEqual(types[len(types)-2:], wantTail) {
		t.Errorf("event tail = %v, want %v", types, wantTail)
	}

	won := filterEvents(log, events.TypeGameWon)
	if len(won) != 1 || won[0].Score != 50 || won[0].Elapsed != time.Second {
		t.Errorf("game_won payload = %+v", won)
	}

	// Further ticks are no-ops.
	before := len(rt.Events())
	rt.Tick(time.Hour)
	if len(rt.Events()) != before {
		t.Error("tick after completion emitted events")
	}
	if rt.Snapshot().Elapsed != time.Second {
		t.Error("tick after completion advanced elapsed")
	}
}

func TestWinConditionEmittedOnce(t *testing.T) {
	exp := scoreHuntExperience()
	// A second, non-required condition keeps the session running after the
	// first condition flips so repeat emission can be observed.
	exp.WinConditions[0].Required = false
	exp.WinConditions = append(exp.WinConditions, experience.Condition{
		ID: "reach_1000", Enabled: true, Required: true,
		Config: experience.ConditionConfig{Type: experience.ConditionReachScore, TargetScore: 1000},
	})
	rt := startRuntime(t, exp)

	rt.AddScore(60)
	rt.Tick(time.Second)
	rt.Tick(time.Second)
	rt.Tick(time.Second)

	met := filterEvents(rt.Events(), events.TypeWinConditionMet)
	if len(met) != 1 || met[0].ConditionID != "reach_50" {
		t.Errorf("win_condition_met events = %+v, want one for reach_50", met)
	}
	if rt.IsComplete() {
		t.Error("session completed without the required condition")
	}
}

func TestWinConditionWithdrawnOnExpiry(t *testing.T) {
	exp := &experience.Experience{
		Name: "Sprint",
		WinConditions: []experience.Condition{
			{ID: "under_10s", Enabled: true, Config: experience.ConditionConfig{
				Type:      experience.ConditionTimeLimit,
				TimeLimit: 10,
			}},
			{ID: "reach_1000", Enabled: true, Required: true, Config: experience.ConditionConfig{
				Type:        experience.ConditionReachScore,
				TargetScore: 1000,
			}},
		},
	}
	rt := startRuntime(t, exp)

	rt.Tick(time.Second) // met
	rt.Tick(15 * time.Second) // withdrawn

	if got := rt.Snapshot().WinConditionsMet; len(got) != 0 {
		t.Errorf("WinConditionsMet after expiry = %v, want empty", got)
	}
	met := filterEvents(rt.Events(), events.TypeWinConditionMet)
	if len(met) != 1 {
		t.Errorf("expected a single edge before withdrawal, got %d", len(met))
	}
}

func TestWinConditionReEmittedAfterResatisfaction(t *testing.T) {
	exp := scoreHuntExperience()
	exp.WinConditions[0].Required = false
	exp.WinConditions = append(exp.WinConditions, experience.Condition{
		ID: "reach_1000", Enabled: true, Required: true,
		Config: experience.ConditionConfig{Type: experience.ConditionReachScore, TargetScore: 1000},
	})
	rt := startRuntime(t, exp)

	rt.AddScore(60)
	rt.Tick(time.Second) // satisfied, first edge
	rt.AddScore(-20)
	rt.Tick(time.Second) // withdrawn
	rt.AddScore(20)
	rt.Tick(time.Second) // satisfied again, second edge

	met := filterEvents(rt.Events(), events.TypeWinConditionMet)
	if len(met) != 2 {
		t.Errorf("win_condition_met events = %d, want 2 (one per rising edge)", len(met))
	}
}

func TestNoRequiredWinConditionsNeverAutoWins(t *testing.T) {
	exp := scoreHuntExperience()
	exp.WinConditions[0].Required = false
	rt := startRuntime(t, exp)

	rt.AddScore(50)
	rt.Tick(time.Second)

	if rt.IsComplete() || rt.Snapshot().HasWon {
		t.Error("session won with no required win conditions")
	}
	// The condition edge is still reported for the HUD.
	if met := filterEvents(rt.Events(), events.TypeWinConditionMet); len(met) != 1 {
		t.Errorf("win_condition_met events = %d, want 1", len(met))
	}
}

func TestGlobalTimeLimitFailsSession(t *testing.T) {
	exp := scoreHuntExperience()
	exp.TimeLimit = 30
	rt := startRuntime(t, exp)
	var log []events.Event
	rt.AddHandler(func(e events.Event) { log = append(log, e) })

	rt.AddScore(10)
	rt.Tick(29 * time.Second)
	if rt.IsComplete() {
		t.Fatal("completed before the limit")
	}

	rt.Tick(time.Second)

	if !rt.IsComplete() {
		t.Fatal("expected failure at the limit")
	}
	st := rt.Snapshot()
	if !st.HasFailed || st.HasWon || st.IsAlive {
		t.Errorf("HasFailed=%v HasWon=%v IsAlive=%v, want failed and not alive", st.HasFailed, st.HasWon, st.IsAlive)
	}

	met := filterEvents(log, events.TypeFailConditionMet)
	if len(met) != 1 || met[0].ConditionID != experience.GlobalTimeLimitID {
		t.Errorf("fail_condition_met = %+v, want one global_time_limit", met)
	}
	failed := filterEvents(log, events.TypeGameFailed)
	if len(failed) != 1 || failed[0].Score != 10 || failed[0].Elapsed != 30*time.Second {
		t.Errorf("game_failed payload = %+v", failed)
	}
}

func TestWinBeatsFailInSameTick(t *testing.T) {
	exp := scoreHuntExperience()
	exp.TimeLimit = 10
	rt := startRuntime(t, exp)

	rt.AddScore(50)
	// Both the win condition and the global limit hold on this tick.
	rt.Tick(10 * time.Second)

	st := rt.Snapshot()
	if !st.HasWon || st.HasFailed {
		t.Errorf("HasWon=%v HasFailed=%v, want win to take precedence", st.HasWon, st.HasFailed)
	}
	if len(filterEvents(rt.Events(), events.TypeGameFailed)) != 0 {
		t.Error("game_failed emitted alongside a win")
	}
	if len(filterEvents(rt.Events(), events.TypeGameWon)) != 1 {
		t.Error("expected exactly one game_won")
	}
}

func TestFailScenarioEndToEnd(t *testing.T) {
	exp := &experience.Experience{
		Name:    "Timed Vault",
		Scoring: experience.Scoring{StartingScore: 0},
		WinConditions: []experience.Condition{
			{ID: "jackpot", Enabled: true, Required: true, Config: experience.ConditionConfig{
				Type:        experience.ConditionReachScore,
				TargetScore: 100,
			}},
		},
		FailConditions: []experience.Condition{
			{ID: "clock", Enabled: true, Config: experience.ConditionConfig{
				Type:         experience.ConditionTimeLimit,
				TimeLimit:    20,
				FailOnExpire: true,
			}},
		},
	}
	rt := startRuntime(t, exp)

	rt.AddScore(50)
	for i := 0; i < 19; i++ {
		rt.Tick(time.Second)
	}
	if rt.IsComplete() {
		t.Fatal("failed early")
	}

	rt.Tick(time.Second)
	if !rt.IsComplete() || !rt.Snapshot().HasFailed {
		t.Fatal("expected failure once the clock expired")
	}

	met := filterEvents(rt.Events(), events.TypeFailConditionMet)
	if len(met) != 1 || met[0].ConditionID != "clock" {
		t.Errorf("fail_condition_met = %+v, want one for clock", met)
	}
	if len(filterEvents(rt.Events(), events.TypeGameFailed)) != 1 {
		t.Error("expected exactly one game_failed")
	}
}

func TestMoveAndRotate(t *testing.T) {
	exp := scoreHuntExperience()
	exp.MovementSpeed = 2
	rt := startRuntime(t, exp)

	rt.Move(1, 0, time.Second)
	st := rt.Snapshot()
	if st.Position.Z != 2 || st.Position.X != 0 {
		t.Errorf("Position = %+v, want Z=2 at yaw 0", st.Position)
	}

	rt.Rotate(95, -30)
	st = rt.Snapshot()
	if st.Rotation.Pitch != 89 {
		t.Errorf("Pitch = %v, want clamp at 89", st.Rotation.Pitch)
	}
	if st.Rotation.Yaw != 330 {
		t.Errorf("Yaw = %v, want 330", st.Rotation.Yaw)
	}

	// Movement never lands on the event stream.
	for _, e := range rt.Events() {
		if e.Type != events.TypeScoreChanged {
			t.Errorf("unexpected event %v on stream", e.Type)
		}
	}
}

func TestSnapshotsAreImmutable(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())

	before := rt.Snapshot()
	rt.AddScore(30)
	after := rt.Snapshot()

	if before == after {
		t.Fatal("mutation did not publish a new snapshot")
	}
	if before.Score != 0 {
		t.Errorf("old snapshot mutated: score %d", before.Score)
	}
	if after.Score != 30 {
		t.Errorf("new snapshot score = %d, want 30", after.Score)
	}
}
