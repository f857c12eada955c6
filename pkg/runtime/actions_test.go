package runtime

import (
	"testing"
	"time"

	"github.com/splatform/playback-engine/pkg/events"
	"github.com/splatform/playback-engine/pkg/experience"
	"github.com/splatform/playback-engine/pkg/player"
)

func TestAddScoreClampsAtZero(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())

	rt.AddScore(10)
	rt.AddScore(-25)

	if got := rt.Snapshot().Score; got != 0 {
		t.Errorf("Score = %d, want clamp at 0", got)
	}
	changed := filterEvents(rt.Events(), events.TypeScoreChanged)
	if len(changed) != 2 || changed[1].Delta != -25 || changed[1].Score != 0 {
		t.Errorf("score_changed events = %+v", changed)
	}
}

func TestAddScoreAllowNegative(t *testing.T) {
	exp := scoreHuntExperience()
	exp.Scoring.AllowNegative = true
	rt := startRuntime(t, exp)

	rt.AddScore(-15)

	if got := rt.Snapshot().Score; got != -15 {
		t.Errorf("Score = %d, want -15", got)
	}
}

func TestCollectItemAggregates(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())

	rt.CollectItem(player.CollectedItem{ItemID: "coin", Name: "Coin", Quantity: 2})
	rt.CollectItem(player.CollectedItem{ItemID: "coin", Quantity: 3})
	rt.CollectItem(player.CollectedItem{ItemID: "gem"}) // quantity defaults to 1

	st := rt.Snapshot()
	if len(st.Inventory) != 2 {
		t.Fatalf("inventory entries = %d, want 2", len(st.Inventory))
	}
	if item := st.FindItem("coin"); item.Quantity != 5 {
		t.Errorf("coin quantity = %d, want 5", item.Quantity)
	}
	if item := st.FindItem("gem"); item.Quantity != 1 || item.CollectedAt.IsZero() {
		t.Errorf("gem entry = %+v, want quantity 1 with timestamp", item)
	}
	if st.GetTotalItems() != 6 {
		t.Errorf("GetTotalItems() = %d, want 6", st.GetTotalItems())
	}
}

func TestRemoveItem(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())
	rt.CollectItem(player.CollectedItem{ItemID: "coin", Quantity: 5})

	rt.RemoveItem("coin", 2)
	if item := rt.Snapshot().FindItem("coin"); item == nil || item.Quantity != 3 {
		t.Errorf("coin after removal = %+v, want 3", item)
	}

	// Removing more than held drops the entry.
	rt.RemoveItem("coin", 10)
	if item := rt.Snapshot().FindItem("coin"); item != nil {
		t.Errorf("coin entry survived over-removal: %+v", item)
	}

	// Removing an unknown item is silent.
	before := len(rt.Events())
	rt.RemoveItem("sword", 1)
	if len(rt.Events()) != before {
		t.Error("removal of unknown item emitted an event")
	}
}

func TestCompleteObjectiveIdempotent(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())

	rt.CompleteObjective("find_key")
	rt.CompleteObjective("find_key")

	st := rt.Snapshot()
	prog := st.ObjectivesProgress["find_key"]
	if !prog.Completed || prog.Progress != 100 || prog.CompletedAt == nil {
		t.Errorf("progress = %+v, want completed at 100%%", prog)
	}
	done := filterEvents(rt.Events(), events.TypeObjectiveCompleted)
	if len(done) != 1 {
		t.Errorf("objective_completed events = %d, want 1", len(done))
	}
}

func TestSetVariableOperations(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(rt *Runtime)
		op       experience.VariableOp
		value    any
		expected any
	}{
		{
			name:     "set assigns literal",
			op:       experience.VarOpSet,
			value:    "open",
			expected: "open",
		},
		{
			name:     "add onto numeric",
			setup:    func(rt *Runtime) { rt.SetVariable("v", experience.VarOpSet, float64(10)) },
			op:       experience.VarOpAdd,
			value:    float64(5),
			expected: float64(15),
		},
		{
			name:     "subtract from numeric",
			setup:    func(rt *Runtime) { rt.SetVariable("v", experience.VarOpSet, 10) },
			op:       experience.VarOpSubtract,
			value:    3,
			expected: float64(7),
		},
		{
			name:     "add onto non-numeric assigns literal",
			setup:    func(rt *Runtime) { rt.SetVariable("v", experience.VarOpSet, "text") },
			op:       experience.VarOpAdd,
			value:    float64(5),
			expected: float64(5),
		},
		{
			name:     "toggle boolean",
			setup:    func(rt *Runtime) { rt.SetVariable("v", experience.VarOpSet, true) },
			op:       experience.VarOpToggle,
			value:    nil,
			expected: false,
		},
		{
			name:     "toggle non-boolean assigns literal",
			setup:    func(rt *Runtime) { rt.SetVariable("v", experience.VarOpSet, 7) },
			op:       experience.VarOpToggle,
			value:    "flip",
			expected: "flip",
		},
		{
			name:     "empty op assigns literal",
			op:       "",
			value:    42,
			expected: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := startRuntime(t, scoreHuntExperience())
			if tt.setup != nil {
				tt.setup(rt)
			}
			rt.SetVariable("v", tt.op, tt.value)
			if got := rt.Snapshot().Variables["v"]; got != tt.expected {
				t.Errorf("Variables[v] = %v (%T), want %v (%T)", got, got, tt.expected, tt.expected)
			}
		})
	}
}

func TestSetVariableEmptyNameIgnored(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())
	rt.SetVariable("", experience.VarOpSet, 1)
	if len(rt.Events()) != 0 {
		t.Error("set_variable with empty name emitted an event")
	}
}

func TestTeleportAndChangeScene(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())

	dest := player.Vec3{X: 10, Y: 1.6, Z: -4}
	rt.Teleport(dest)
	if got := rt.Snapshot().Position; got != dest {
		t.Errorf("Position = %+v, want %+v", got, dest)
	}

	rt2 := startRuntime(t, interactionExperience(experience.Interaction{
		ID:      "door",
		Enabled: true,
		Actions: []experience.Action{{Type: experience.ActionChangeScene, SceneID: "vault"}},
	}))
	rt2.TriggerInteraction("door", "lever")
	if !rt2.Snapshot().VisitedScenes["vault"] {
		t.Error("scene visit not recorded")
	}
	changed := filterEvents(rt2.Events(), events.TypeSceneChanged)
	if len(changed) != 1 || changed[0].SceneID != "vault" {
		t.Errorf("scene_changed = %+v", changed)
	}
}

func TestShowMessageAutoHide(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())

	rt.ShowMessage("Hint", "Look behind the statue", "info", 30*time.Millisecond)
	if msg := rt.ActiveMessage(); msg == nil || msg.Message != "Look behind the statue" {
		t.Fatalf("ActiveMessage = %+v", msg)
	}

	time.Sleep(60 * time.Millisecond)

	if msg := rt.ActiveMessage(); msg != nil {
		t.Errorf("message still shown after duration: %+v", msg)
	}
}

func TestNewerMessageSupersedesAutoHide(t *testing.T) {
	rt := startRuntime(t, scoreHuntExperience())

	rt.ShowMessage("", "first", "", 20*time.Millisecond)
	rt.ShowMessage("", "second", "", 0) // sticky

	time.Sleep(50 * time.Millisecond)

	msg := rt.ActiveMessage()
	if msg == nil || msg.Message != "second" {
		t.Errorf("ActiveMessage = %+v, want the sticky second message", msg)
	}
}

func TestShowHideObjectActions(t *testing.T) {
	rt := startRuntime(t, interactionExperience(experience.Interaction{
		ID:      "reveal",
		Enabled: true,
		Actions: []experience.Action{
			{Type: experience.ActionShowObject, TargetObjectID: "secret_door"},
			{Type: experience.ActionHideObject}, // defaults to the owning object
		},
	}))

	rt.TriggerInteraction("reveal", "lever")

	show := filterEvents(rt.Events(), events.TypeShowObject)
	if len(show) != 1 || show[0].ObjectID != "secret_door" {
		t.Errorf("show_object = %+v", show)
	}
	hide := filterEvents(rt.Events(), events.TypeHideObject)
	if len(hide) != 1 || hide[0].ObjectID != "lever" {
		t.Errorf("hide_object = %+v", hide)
	}
}

func TestUnknownActionTypeSkipped(t *testing.T) {
	rt := startRuntime(t, interactionExperience(experience.Interaction{
		ID:      "mystery",
		Enabled: true,
		Actions: []experience.Action{
			{Type: "spawn_dragon"},
			{Type: experience.ActionAddScore, Amount: 3},
		},
	}))

	rt.TriggerInteraction("mystery", "lever")

	if got := rt.Snapshot().Score; got != 3 {
		t.Errorf("Score = %d, want 3 (later actions still run)", got)
	}
}
