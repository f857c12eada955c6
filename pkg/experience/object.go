package experience

import "github.com/splatform/playback-engine/pkg/player"

// TriggerType names what fires an interaction. Trigger detection itself
// (raycasts, proximity checks, physics) belongs to the hosting scene
// integration; the runtime only receives the resulting trigger calls.
type TriggerType string

const (
	TriggerClick       TriggerType = "click"
	TriggerProximity   TriggerType = "proximity"
	TriggerCollision   TriggerType = "collision"
	TriggerLook        TriggerType = "look"
	TriggerCollect     TriggerType = "collect"
	TriggerConditional TriggerType = "conditional"
	TriggerTimer       TriggerType = "timer"
	TriggerSequence    TriggerType = "sequence"
	TriggerZone        TriggerType = "zone"
)

// Trigger configures when an interaction fires.
type Trigger struct {
	Type TriggerType `json:"type"`

	Radius   float64 `json:"radius,omitempty"`   // proximity, zone
	Interval float64 `json:"interval,omitempty"` // timer, seconds
	Variable string  `json:"variable,omitempty"` // conditional
	Value    any     `json:"value,omitempty"`    // conditional
}

// ActionType tags a declarative effect. Unknown types are skipped at
// execution time so newer authoring clients stay compatible with older
// players.
type ActionType string

const (
	ActionPlaySound         ActionType = "play_sound"
	ActionShowMessage       ActionType = "show_message"
	ActionAddScore          ActionType = "add_score"
	ActionAddInventory      ActionType = "add_inventory"
	ActionTeleport          ActionType = "teleport"
	ActionChangeScene       ActionType = "change_scene"
	ActionSetVariable       ActionType = "set_variable"
	ActionCompleteObjective ActionType = "complete_objective"
	ActionShowObject        ActionType = "show_object"
	ActionHideObject        ActionType = "hide_object"
)

// VariableOp names the arithmetic applied by a set_variable action.
// Anything other than add/subtract/toggle assigns the literal value, as
// does a type mismatch with the variable's current value.
type VariableOp string

const (
	VarOpSet      VariableOp = "set"
	VarOpAdd      VariableOp = "add"
	VarOpSubtract VariableOp = "subtract"
	VarOpToggle   VariableOp = "toggle"
)

// Action is a single declarative effect executed when an interaction
// fires. Only the fields for its Type are meaningful.
type Action struct {
	Type ActionType `json:"type"`

	SoundID string `json:"sound_id,omitempty"` // play_sound

	Title    string  `json:"title,omitempty"`    // show_message
	Message  string  `json:"message,omitempty"`  // show_message
	Style    string  `json:"style,omitempty"`    // show_message
	Duration float64 `json:"duration,omitempty"` // show_message, seconds

	Amount int `json:"amount,omitempty"` // add_score

	ItemID   string `json:"item_id,omitempty"`   // add_inventory
	ItemName string `json:"item_name,omitempty"` // add_inventory
	Quantity int    `json:"quantity,omitempty"`  // add_inventory, default 1

	Position *player.Vec3 `json:"position,omitempty"` // teleport

	SceneID string `json:"scene_id,omitempty"` // change_scene

	Variable  string     `json:"variable,omitempty"`  // set_variable
	Operation VariableOp `json:"operation,omitempty"` // set_variable
	Value     any        `json:"value,omitempty"`     // set_variable

	ObjectiveID string `json:"objective_id,omitempty"` // complete_objective

	TargetObjectID string `json:"target_object_id,omitempty"` // show_object, hide_object
}

// Interaction maps a trigger to an ordered action list on a placed
// object. Cooldown is in milliseconds; MaxTriggers of 0 means unlimited.
type Interaction struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Enabled     bool     `json:"enabled"`
	Trigger     Trigger  `json:"trigger"`
	Actions     []Action `json:"actions,omitempty"`
	Cooldown    int      `json:"cooldown,omitempty"`
	MaxTriggers int      `json:"max_triggers,omitempty"`
}

// Transform positions a placed object in the scene.
type Transform struct {
	Position player.Vec3 `json:"position"`
	Rotation player.Vec3 `json:"rotation,omitempty"` // euler degrees
	Scale    player.Vec3 `json:"scale,omitempty"`
}

// PlacedObject is an authored instance of a reusable asset positioned in
// a scene, optionally carrying interactions. ModelRef identifies the
// asset (splat or mesh) and is opaque to the runtime.
type PlacedObject struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	ModelRef     string        `json:"model_ref,omitempty"`
	Transform    Transform     `json:"transform"`
	Interactions []Interaction `json:"interactions,omitempty"`
}

// Interaction returns the interaction with the given id, or nil.
func (o *PlacedObject) Interaction(id string) *Interaction {
	for i := range o.Interactions {
		if o.Interactions[i].ID == id {
			return &o.Interactions[i]
		}
	}
	return nil
}
