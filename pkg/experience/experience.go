// Package experience models the authored documents a playback session is
// built from: the game configuration (scoring, objectives, win/fail
// conditions) and the placed objects with their interaction rules. All
// documents are immutable once a session starts.
package experience

import (
	"github.com/splatform/playback-engine/pkg/player"
)

// Experience is the template for a playback session, authored in the
// studio and persisted as JSON.
type Experience struct {
	Name        string `json:"name"`
	FileName    string `json:"file_name,omitempty"`
	Description string `json:"description,omitempty"`

	Scoring          Scoring          `json:"scoring"`
	InventoryDisplay InventoryDisplay `json:"inventory_display"`

	WinConditions  []Condition `json:"win_conditions,omitempty"`
	FailConditions []Condition `json:"fail_conditions,omitempty"`
	Objectives     []Objective `json:"objectives,omitempty"`
	Rewards        []Reward    `json:"rewards,omitempty"`

	// TimeLimit is a global limit in seconds. When set, its expiry fails
	// the session regardless of the authored fail-condition list.
	TimeLimit float64 `json:"time_limit,omitempty"`

	MovementSpeed float64 `json:"movement_speed,omitempty"` // m/s, default 5

	AllowRestart bool `json:"allow_restart,omitempty"`
	PersistState bool `json:"persist_state,omitempty"`

	StartPosition *player.Vec3   `json:"start_position,omitempty"`
	Objects       []PlacedObject `json:"objects,omitempty"`
}

// Scoring holds the experience's scoring rules.
type Scoring struct {
	StartingScore int    `json:"starting_score,omitempty"`
	AllowNegative bool   `json:"allow_negative,omitempty"`
	DisplayFormat string `json:"display_format,omitempty"` // "plain", "padded" or grouped default
}

// InventoryDisplay holds HUD presentation rules for the inventory.
type InventoryDisplay struct {
	Visible       bool   `json:"visible"`
	ShowQuantity  bool   `json:"show_quantity,omitempty"`
	SlotLimit     int    `json:"slot_limit,omitempty"` // 0 = unlimited slots shown
	EmptySlotHint string `json:"empty_slot_hint,omitempty"`
}

// Objective is an authored goal the player can complete during playback.
type Objective struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"` // not shown on the HUD until completed
}

// Reward is granted when the session is won. The runtime emits the win;
// granting (badges, unlocks) is the hosting product's concern.
type Reward struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageRef    string `json:"image_ref,omitempty"`
}

// DefaultMovementSpeed is used when an experience does not set one.
const DefaultMovementSpeed = 5.0

// Speed returns the configured movement speed or the default.
func (e *Experience) Speed() float64 {
	if e.MovementSpeed > 0 {
		return e.MovementSpeed
	}
	return DefaultMovementSpeed
}

// Object returns the placed object with the given id, or nil.
func (e *Experience) Object(id string) *PlacedObject {
	for i := range e.Objects {
		if e.Objects[i].ID == id {
			return &e.Objects[i]
		}
	}
	return nil
}
