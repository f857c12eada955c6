package runtime

import (
	"time"

	"github.com/splatform/playback-engine/pkg/experience"
	"github.com/splatform/playback-engine/pkg/player"
)

// The public mutators are the discrete entry points for the hosting UI
// and for scripted effects. Each computes a full replacement snapshot,
// publishes it, and emits exactly one event. All are silent no-ops when
// no session is loaded.

// AddScore applies a score delta, clamping at zero unless the experience
// allows negative scores.
func (r *Runtime) AddScore(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return
	}
	r.addScoreLocked(delta)
}

// CollectItem adds the item to the inventory, accumulating quantity onto
// an existing entry with the same ItemID.
func (r *Runtime) CollectItem(item player.CollectedItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.CollectedAt.IsZero() {
		item.CollectedAt = r.now()
	}
	r.collectItemLocked(item)
}

// RemoveItem decrements the entry's quantity, dropping the entry when it
// reaches zero. Removing more than held removes the entry; removing an
// unknown item does nothing.
func (r *Runtime) RemoveItem(itemID string, quantity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return
	}
	r.removeItemLocked(itemID, quantity)
}

// CompleteObjective marks the objective complete at full progress. A
// second completion of the same objective is a no-op.
func (r *Runtime) CompleteObjective(objectiveID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return
	}
	r.completeObjectiveLocked(objectiveID)
}

// SetVariable writes to the scripting blackboard. Add/subtract apply
// arithmetic when both the current and new values are numeric, toggle
// inverts a boolean; any mismatch assigns the literal value.
func (r *Runtime) SetVariable(name string, op experience.VariableOp, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return
	}
	r.setVariableLocked(name, op, value)
}

// Teleport moves the player to an absolute position.
func (r *Runtime) Teleport(pos player.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return
	}
	r.teleportLocked(pos)
}

// ShowMessage displays a HUD message. A positive duration schedules an
// auto-hide; a later message supersedes the pending hide.
func (r *Runtime) ShowMessage(title, msg, style string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return
	}
	r.showMessageLocked(title, msg, style, duration)
}

// Move applies yaw-relative forward/strafe input for dt at the
// experience's movement speed. Movement does not emit events; only
// discrete effects go on the stream. No-op unless playing.
func (r *Runtime) Move(forward, strafe float64, dt time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying || r.state == nil {
		return
	}
	next := r.state.Clone()
	next.Position = player.Move(next.Position, next.Rotation, forward, strafe, dt.Seconds(), r.exp.Speed())
	r.state = next
}

// Rotate applies pitch/yaw deltas in degrees, clamping pitch and
// wrapping yaw. No-op unless playing.
func (r *Runtime) Rotate(deltaPitch, deltaYaw float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying || r.state == nil {
		return
	}
	next := r.state.Clone()
	next.Rotation = player.Rotate(next.Rotation, deltaPitch, deltaYaw)
	r.state = next
}
