package runtime

import (
	"time"

	"github.com/splatform/playback-engine/pkg/events"
)

// InteractionState is the per-(object, interaction) bookkeeping, created
// lazily on the first trigger attempt.
type InteractionState struct {
	TriggerCount    int       `json:"trigger_count"`
	LastTriggeredAt time.Time `json:"last_triggered_at"`
	OnCooldown      bool      `json:"on_cooldown"`
	InRange         bool      `json:"in_range"`
}

func interactionKey(objectID, interactionID string) string {
	return objectID + ":" + interactionID
}

// TriggerInteraction resolves a trigger event against the object's
// configured interaction and, if it is enabled, off cooldown and under
// its trigger budget, executes its action list. Unknown ids, disabled
// interactions and gated attempts are silent no-ops. Actions run before
// the trigger count is persisted, so an action must not re-trigger its
// own interaction.
func (r *Runtime) TriggerInteraction(interactionID, objectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exp == nil {
		return
	}

	key := interactionKey(objectID, interactionID)
	st := r.interactions[key]
	if st != nil && st.OnCooldown {
		return
	}

	obj := r.index[objectID]
	if obj == nil {
		return
	}
	ic := obj.Interaction(interactionID)
	if ic == nil || !ic.Enabled {
		return
	}
	if ic.MaxTriggers > 0 && st != nil && st.TriggerCount >= ic.MaxTriggers {
		return
	}

	r.executeActions(ic.Actions, objectID)

	if st == nil {
		st = &InteractionState{}
		r.interactions[key] = st
	}
	st.TriggerCount++
	st.LastTriggeredAt = r.now()
	st.OnCooldown = ic.Cooldown > 0

	if ic.Cooldown > 0 {
		r.afterFunc(time.Duration(ic.Cooldown)*time.Millisecond, func() {
			if cur, ok := r.interactions[key]; ok {
				cur.OnCooldown = false
			}
		})
	}

	r.emit(events.Event{
		Type:          events.TypeInteractionTriggered,
		InteractionID: interactionID,
		ObjectID:      objectID,
	})
}

// SetInteractionRange records whether the player is inside the
// interaction's trigger range. The hosting scene integration owns the
// actual proximity/zone detection and reports transitions here.
func (r *Runtime) SetInteractionRange(interactionID, objectID string, inRange bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.interactions == nil {
		return
	}
	key := interactionKey(objectID, interactionID)
	st := r.interactions[key]
	if st == nil {
		st = &InteractionState{}
		r.interactions[key] = st
	}
	st.InRange = inRange
}

// InteractionStateFor returns a copy of the bookkeeping for the pair, or
// false if it has never been touched this session.
func (r *Runtime) InteractionStateFor(interactionID, objectID string) (InteractionState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.interactions[interactionKey(objectID, interactionID)]
	if st == nil {
		return InteractionState{}, false
	}
	return *st, true
}
