package experience

import (
	"fmt"
	"strings"
)

// Validate runs authoring-time checks on the document and returns a
// single error describing every problem found, or nil. Playback itself
// never requires a valid document; malformed content degrades to no-ops
// at run time, and this exists so the studio can surface mistakes early.
func (e *Experience) Validate() error {
	var problems []string

	if strings.TrimSpace(e.Name) == "" {
		problems = append(problems, "experience name is required")
	}
	if e.TimeLimit < 0 {
		problems = append(problems, "time_limit must not be negative")
	}
	if e.MovementSpeed < 0 {
		problems = append(problems, "movement_speed must not be negative")
	}

	objectiveIDs := make(map[string]bool, len(e.Objectives))
	for _, o := range e.Objectives {
		if o.ID == "" {
			problems = append(problems, fmt.Sprintf("objective %q has no id", o.Name))
			continue
		}
		if objectiveIDs[o.ID] {
			problems = append(problems, fmt.Sprintf("duplicate objective id %q", o.ID))
		}
		objectiveIDs[o.ID] = true
	}

	problems = append(problems, validateConditions("win", e.WinConditions, objectiveIDs)...)
	problems = append(problems, validateConditions("fail", e.FailConditions, objectiveIDs)...)

	objectIDs := make(map[string]bool, len(e.Objects))
	for i := range e.Objects {
		obj := &e.Objects[i]
		if obj.ID == "" {
			problems = append(problems, fmt.Sprintf("object %q has no id", obj.Name))
			continue
		}
		if objectIDs[obj.ID] {
			problems = append(problems, fmt.Sprintf("duplicate object id %q", obj.ID))
		}
		objectIDs[obj.ID] = true

		interactionIDs := make(map[string]bool, len(obj.Interactions))
		for j := range obj.Interactions {
			ic := &obj.Interactions[j]
			if ic.ID == "" {
				problems = append(problems, fmt.Sprintf("object %q: interaction %d has no id", obj.ID, j))
				continue
			}
			if interactionIDs[ic.ID] {
				problems = append(problems, fmt.Sprintf("object %q: duplicate interaction id %q", obj.ID, ic.ID))
			}
			interactionIDs[ic.ID] = true
			if ic.Cooldown < 0 {
				problems = append(problems, fmt.Sprintf("object %q: interaction %q cooldown must not be negative", obj.ID, ic.ID))
			}
			if ic.MaxTriggers < 0 {
				problems = append(problems, fmt.Sprintf("object %q: interaction %q max_triggers must not be negative", obj.ID, ic.ID))
			}
			for _, a := range ic.Actions {
				if a.Type == ActionCompleteObjective && a.ObjectiveID != "" && !objectiveIDs[a.ObjectiveID] {
					problems = append(problems, fmt.Sprintf("object %q: interaction %q completes unknown objective %q", obj.ID, ic.ID, a.ObjectiveID))
				}
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid experience: %s", strings.Join(problems, "; "))
}

func validateConditions(kind string, conds []Condition, objectiveIDs map[string]bool) []string {
	var problems []string
	seen := make(map[string]bool, len(conds))
	for _, c := range conds {
		if c.ID == "" {
			problems = append(problems, fmt.Sprintf("%s condition %q has no id", kind, c.Name))
			continue
		}
		if seen[c.ID] {
			problems = append(problems, fmt.Sprintf("duplicate %s condition id %q", kind, c.ID))
		}
		seen[c.ID] = true
		if c.Config.TimeLimit < 0 {
			problems = append(problems, fmt.Sprintf("%s condition %q: time_limit must not be negative", kind, c.ID))
		}
		if c.Config.Type == ConditionCompleteObjectives {
			for _, id := range c.Config.ObjectiveIDs {
				if !objectiveIDs[id] {
					problems = append(problems, fmt.Sprintf("%s condition %q references unknown objective %q", kind, c.ID, id))
				}
			}
		}
	}
	return problems
}
