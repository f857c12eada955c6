package runtime

import (
	"encoding/json"
	"time"

	"github.com/splatform/playback-engine/pkg/events"
	"github.com/splatform/playback-engine/pkg/experience"
	"github.com/splatform/playback-engine/pkg/player"
)

// executeActions interprets the action list in order. No action errors:
// unrecognized types and missing parameters are skipped so partially
// authored content plays without crashing.
func (r *Runtime) executeActions(actions []experience.Action, objectID string) {
	for i := range actions {
		a := &actions[i]
		switch a.Type {
		case experience.ActionPlaySound:
			r.emit(events.Event{
				Type:     events.TypeSoundPlayed,
				SoundID:  a.SoundID,
				ObjectID: objectID,
			})

		case experience.ActionShowMessage:
			r.showMessageLocked(a.Title, a.Message, a.Style, secondsToDuration(a.Duration))

		case experience.ActionAddScore:
			r.addScoreLocked(a.Amount)

		case experience.ActionAddInventory:
			item := player.CollectedItem{
				ItemID:      a.ItemID,
				ObjectID:    objectID,
				Name:        a.ItemName,
				Quantity:    a.Quantity,
				CollectedAt: r.now(),
			}
			if item.ItemID == "" {
				item.ItemID = objectID
			}
			if item.Quantity <= 0 {
				item.Quantity = 1
			}
			r.collectItemLocked(item)

		case experience.ActionTeleport:
			if a.Position != nil {
				r.teleportLocked(*a.Position)
			}

		case experience.ActionChangeScene:
			r.changeSceneLocked(a.SceneID)

		case experience.ActionSetVariable:
			r.setVariableLocked(a.Variable, a.Operation, a.Value)

		case experience.ActionCompleteObjective:
			r.completeObjectiveLocked(a.ObjectiveID)

		case experience.ActionShowObject:
			r.emit(events.Event{Type: events.TypeShowObject, ObjectID: targetObject(a, objectID)})

		case experience.ActionHideObject:
			r.emit(events.Event{Type: events.TypeHideObject, ObjectID: targetObject(a, objectID)})

		default:
			// Unknown action types are authored by newer clients; skip.
			r.logger.Debug("skipping unknown action type", "type", a.Type, "object", objectID)
		}
	}
}

func targetObject(a *experience.Action, objectID string) string {
	if a.TargetObjectID != "" {
		return a.TargetObjectID
	}
	return objectID
}

func (r *Runtime) addScoreLocked(delta int) {
	next := r.state.Clone()
	next.Score += delta
	if next.Score < 0 && !r.exp.Scoring.AllowNegative {
		next.Score = 0
	}
	r.state = next
	r.emit(events.Event{Type: events.TypeScoreChanged, Delta: delta, Score: next.Score})
}

func (r *Runtime) collectItemLocked(item player.CollectedItem) {
	next := r.state.Clone()
	if existing := next.FindItem(item.ItemID); existing != nil {
		existing.Quantity += item.Quantity
	} else {
		next.Inventory = append(next.Inventory, item)
	}
	r.state = next
	r.emit(events.Event{
		Type:     events.TypeItemCollected,
		ItemID:   item.ItemID,
		ItemName: item.Name,
		Quantity: item.Quantity,
		ObjectID: item.ObjectID,
	})
}

func (r *Runtime) removeItemLocked(itemID string, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	existing := r.state.FindItem(itemID)
	if existing == nil {
		return
	}
	next := r.state.Clone()
	entry := next.FindItem(itemID)
	entry.Quantity -= quantity
	if entry.Quantity <= 0 {
		kept := next.Inventory[:0]
		for _, it := range next.Inventory {
			if it.ItemID != itemID {
				kept = append(kept, it)
			}
		}
		next.Inventory = kept
	}
	r.state = next
	r.emit(events.Event{Type: events.TypeItemRemoved, ItemID: itemID, Quantity: quantity})
}

func (r *Runtime) completeObjectiveLocked(objectiveID string) {
	if objectiveID == "" || r.state.ObjectivesProgress[objectiveID].Completed {
		return
	}
	now := r.now()
	next := r.state.Clone()
	next.ObjectivesProgress[objectiveID] = player.ObjectiveProgress{
		Completed:   true,
		Progress:    100,
		CompletedAt: &now,
	}
	r.state = next
	r.emit(events.Event{Type: events.TypeObjectiveCompleted, ObjectiveID: objectiveID})
}

func (r *Runtime) setVariableLocked(name string, op experience.VariableOp, value any) {
	if name == "" {
		return
	}
	current := r.state.Variables[name]
	newValue := value
	switch op {
	case experience.VarOpAdd, experience.VarOpSubtract:
		// Arithmetic only applies when both sides are numeric; otherwise
		// the literal value is assigned unchanged.
		cur, curOK := toFloat(current)
		delta, deltaOK := toFloat(value)
		if curOK && deltaOK {
			if op == experience.VarOpSubtract {
				delta = -delta
			}
			newValue = cur + delta
		}
	case experience.VarOpToggle:
		if b, ok := current.(bool); ok {
			newValue = !b
		}
	}
	next := r.state.Clone()
	next.Variables[name] = newValue
	r.state = next
	r.emit(events.Event{Type: events.TypeVariableChanged, Variable: name, Value: newValue})
}

func (r *Runtime) teleportLocked(pos player.Vec3) {
	next := r.state.Clone()
	next.Position = pos
	r.state = next
	r.emit(events.Event{Type: events.TypeTeleported, Position: &pos})
}

func (r *Runtime) changeSceneLocked(sceneID string) {
	// The actual scene swap is the rendering layer's responsibility; the
	// runtime records the visit and announces it.
	next := r.state.Clone()
	if sceneID != "" {
		next.VisitedScenes[sceneID] = true
	}
	r.state = next
	r.emit(events.Event{Type: events.TypeSceneChanged, SceneID: sceneID})
}

func (r *Runtime) showMessageLocked(title, msg, style string, duration time.Duration) {
	r.messageGen++
	gen := r.messageGen
	r.activeMessage = &ActiveMessage{
		Title:    title,
		Message:  msg,
		Style:    style,
		Duration: duration,
		ShownAt:  r.now(),
	}
	r.emit(events.Event{
		Type:     events.TypeMessageShown,
		Title:    title,
		Message:  msg,
		Style:    style,
		Duration: duration,
	})
	if duration > 0 {
		r.afterFunc(duration, func() {
			// A newer message may have replaced this one; only the timer
			// for the latest generation clears the display.
			if r.messageGen == gen {
				r.activeMessage = nil
			}
		})
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
