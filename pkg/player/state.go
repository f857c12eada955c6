package player

import (
	"time"
)

// Vec3 is a point or displacement in scene space, in meters.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is a camera orientation in degrees. Pitch is held in [-89, 89]
// and yaw in [0, 360).
type Rotation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// CollectedItem is one inventory entry. The inventory holds at most one
// entry per ItemID; re-collection accumulates Quantity.
type CollectedItem struct {
	ItemID      string    `json:"item_id"`
	ObjectID    string    `json:"object_id,omitempty"` // placed object the item came from
	Name        string    `json:"name,omitempty"`
	Quantity    int       `json:"quantity"`
	CollectedAt time.Time `json:"collected_at"`
}

// ObjectiveProgress tracks completion of a single authored objective.
type ObjectiveProgress struct {
	Completed   bool       `json:"completed"`
	Progress    float64    `json:"progress"` // 0..100
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// State is the canonical player snapshot. It is owned by the runtime and
// replaced wholesale on every mutation; consumers may hold a *State and
// treat it as immutable.
type State struct {
	Position Vec3     `json:"position"`
	Rotation Rotation `json:"rotation"`

	Score              int                          `json:"score"`
	Inventory          []CollectedItem              `json:"inventory,omitempty"`
	ObjectivesProgress map[string]ObjectiveProgress `json:"objectives_progress,omitempty"`
	VisitedScenes      map[string]bool              `json:"visited_scenes,omitempty"`
	Variables          map[string]any               `json:"variables,omitempty"`

	StartTime time.Time     `json:"start_time"`
	Elapsed   time.Duration `json:"elapsed"` // advanced only by the runtime tick

	IsPaused  bool `json:"is_paused"`
	IsAlive   bool `json:"is_alive"`
	HasWon    bool `json:"has_won"`
	HasFailed bool `json:"has_failed"`

	WinConditionsMet  []string `json:"win_conditions_met,omitempty"`
	FailConditionsMet []string `json:"fail_conditions_met,omitempty"`
}

// DefaultStartPosition is standing eye height at the scene origin.
var DefaultStartPosition = Vec3{X: 0, Y: 1.6, Z: 0}

// NewState returns a fresh snapshot for the start of a playback session.
// A nil start position falls back to DefaultStartPosition.
func NewState(start *Vec3, startingScore int) *State {
	pos := DefaultStartPosition
	if start != nil {
		pos = *start
	}
	return &State{
		Position:           pos,
		Score:              startingScore,
		Inventory:          make([]CollectedItem, 0),
		ObjectivesProgress: make(map[string]ObjectiveProgress),
		VisitedScenes:      make(map[string]bool),
		Variables:          make(map[string]any),
		StartTime:          time.Now(),
		IsAlive:            true,
	}
}

// Clone returns a deep copy. Mutating operations clone, modify the copy and
// publish it, so previously handed-out snapshots stay stable.
func (s *State) Clone() *State {
	next := *s
	next.Inventory = make([]CollectedItem, len(s.Inventory))
	copy(next.Inventory, s.Inventory)
	next.ObjectivesProgress = make(map[string]ObjectiveProgress, len(s.ObjectivesProgress))
	for k, v := range s.ObjectivesProgress {
		next.ObjectivesProgress[k] = v
	}
	next.VisitedScenes = make(map[string]bool, len(s.VisitedScenes))
	for k, v := range s.VisitedScenes {
		next.VisitedScenes[k] = v
	}
	next.Variables = make(map[string]any, len(s.Variables))
	for k, v := range s.Variables {
		next.Variables[k] = v
	}
	next.WinConditionsMet = append([]string(nil), s.WinConditionsMet...)
	next.FailConditionsMet = append([]string(nil), s.FailConditionsMet...)
	return &next
}

// FindItem returns the inventory entry for itemID, or nil.
func (s *State) FindItem(itemID string) *CollectedItem {
	for i := range s.Inventory {
		if s.Inventory[i].ItemID == itemID {
			return &s.Inventory[i]
		}
	}
	return nil
}

// GetScore implements the condition evaluator's view of the player.
func (s *State) GetScore() int { return s.Score }

// GetTotalItems returns the sum of all inventory quantities.
func (s *State) GetTotalItems() int {
	total := 0
	for i := range s.Inventory {
		total += s.Inventory[i].Quantity
	}
	return total
}

// HasAnyItems reports whether the inventory is non-empty.
func (s *State) HasAnyItems() bool { return len(s.Inventory) > 0 }

// ObjectiveCompleted reports whether the objective has been completed.
func (s *State) ObjectiveCompleted(id string) bool {
	return s.ObjectivesProgress[id].Completed
}

// GetElapsed returns playback time advanced so far.
func (s *State) GetElapsed() time.Duration { return s.Elapsed }
