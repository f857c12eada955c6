// Package events defines the runtime's canonical event stream: a closed
// set of event types, a bounded in-memory log, and synchronous fan-out to
// registered handlers.
package events

import (
	"time"

	"github.com/splatform/playback-engine/pkg/player"
)

// Type tags a runtime event.
type Type string

const (
	TypeScoreChanged         Type = "score_changed"
	TypeItemCollected        Type = "item_collected"
	TypeItemRemoved          Type = "item_removed"
	TypeObjectiveCompleted   Type = "objective_completed"
	TypeMessageShown         Type = "message_shown"
	TypeSoundPlayed          Type = "sound_played"
	TypeTeleported           Type = "teleported"
	TypeSceneChanged         Type = "scene_changed"
	TypeVariableChanged      Type = "variable_changed"
	TypeWinConditionMet      Type = "win_condition_met"
	TypeFailConditionMet     Type = "fail_condition_met"
	TypeGameWon              Type = "game_won"
	TypeGameFailed           Type = "game_failed"
	TypeInteractionTriggered Type = "interaction_triggered"
	TypeShowObject           Type = "show_object"
	TypeHideObject           Type = "hide_object"
)

// Event is one entry in the runtime stream. Only the fields relevant to
// its Type are populated.
type Event struct {
	Type Type      `json:"type"`
	At   time.Time `json:"at"`

	ObjectID      string `json:"object_id,omitempty"`
	InteractionID string `json:"interaction_id,omitempty"`
	ConditionID   string `json:"condition_id,omitempty"`
	ObjectiveID   string `json:"objective_id,omitempty"`
	SceneID       string `json:"scene_id,omitempty"`
	SoundID       string `json:"sound_id,omitempty"`

	ItemID   string `json:"item_id,omitempty"`
	ItemName string `json:"item_name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`

	Delta int `json:"delta,omitempty"` // score_changed
	Score int `json:"score,omitempty"` // score after the change; final score on game_won/game_failed

	Variable string `json:"variable,omitempty"`
	Value    any    `json:"value,omitempty"`

	Position *player.Vec3 `json:"position,omitempty"` // teleported

	Title    string        `json:"title,omitempty"`    // message_shown
	Message  string        `json:"message,omitempty"`  // message_shown
	Style    string        `json:"style,omitempty"`    // message_shown
	Duration time.Duration `json:"duration,omitempty"` // message_shown

	Elapsed time.Duration `json:"elapsed,omitempty"` // game_won, game_failed
}
