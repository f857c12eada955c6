package experience

import "time"

// ConditionType tags a win/fail predicate. Unknown types never satisfy.
type ConditionType string

const (
	ConditionCollectCount       ConditionType = "collect_count"
	ConditionReachScore         ConditionType = "reach_score"
	ConditionCompleteObjectives ConditionType = "complete_objectives"
	ConditionCollectAll         ConditionType = "collect_all"
	ConditionTimeLimit          ConditionType = "time_limit"
)

// GlobalTimeLimitID is the synthetic fail-condition id reported when an
// experience-level time limit expires.
const GlobalTimeLimitID = "global_time_limit"

// DefaultTimeLimit applies when a time_limit condition has none set.
const DefaultTimeLimit = 300 * time.Second

// Condition is a declarative win or fail predicate evaluated against the
// player every tick.
type Condition struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Enabled  bool            `json:"enabled"`
	Required bool            `json:"required,omitempty"` // win: must be met for the session to be won
	Config   ConditionConfig `json:"config"`
}

// ConditionConfig carries the per-type parameters. Only the fields for
// its Type are meaningful.
type ConditionConfig struct {
	Type ConditionType `json:"type"`

	Count        int      `json:"count,omitempty"`          // collect_count, default 1
	TargetScore  int      `json:"target_score,omitempty"`   // reach_score
	ObjectiveIDs []string `json:"objective_ids,omitempty"`  // complete_objectives
	RequireAll   *bool    `json:"require_all,omitempty"`    // complete_objectives, default true
	TimeLimit    float64  `json:"time_limit,omitempty"`     // time_limit, seconds, default 300
	FailOnExpire bool     `json:"fail_on_expire,omitempty"` // time_limit as a fail predicate
}

// PlayerView is the minimal read surface the evaluators need. The
// runtime's player snapshot implements it; tests supply mocks.
type PlayerView interface {
	GetScore() int
	GetTotalItems() int
	HasAnyItems() bool
	ObjectiveCompleted(id string) bool
	GetElapsed() time.Duration
}

// EvaluateWinConditions returns the ids of enabled win conditions whose
// predicate currently holds. Pure; safe to call speculatively for HUD
// previews.
func (e *Experience) EvaluateWinConditions(view PlayerView) []string {
	var met []string
	for i := range e.WinConditions {
		c := &e.WinConditions[i]
		if !c.Enabled {
			continue
		}
		if winSatisfied(c.Config, view) {
			met = append(met, c.ID)
		}
	}
	return met
}

func winSatisfied(cfg ConditionConfig, view PlayerView) bool {
	switch cfg.Type {
	case ConditionCollectCount:
		count := cfg.Count
		if count <= 0 {
			count = 1
		}
		return view.GetTotalItems() >= count

	case ConditionReachScore:
		return view.GetScore() >= cfg.TargetScore

	case ConditionCompleteObjectives:
		requireAll := cfg.RequireAll == nil || *cfg.RequireAll
		if requireAll {
			for _, id := range cfg.ObjectiveIDs {
				if !view.ObjectiveCompleted(id) {
					return false
				}
			}
			return true
		}
		for _, id := range cfg.ObjectiveIDs {
			if view.ObjectiveCompleted(id) {
				return true
			}
		}
		return false

	case ConditionCollectAll:
		// Satisfied by any collected item rather than a full sweep of the
		// scene's collectibles. Kept for document compatibility.
		return view.HasAnyItems()

	case ConditionTimeLimit:
		// Satisfied while still inside the limit, so expiry withdraws it.
		return view.GetElapsed() < conditionLimit(cfg)

	default:
		return false
	}
}

// EvaluateFailConditions returns the ids of enabled fail conditions that
// currently hold, plus GlobalTimeLimitID when the experience-level limit
// has expired. Pure.
func (e *Experience) EvaluateFailConditions(view PlayerView) []string {
	var met []string
	for i := range e.FailConditions {
		c := &e.FailConditions[i]
		if !c.Enabled {
			continue
		}
		// Only a time_limit predicate is recognized on the fail side.
		if c.Config.Type != ConditionTimeLimit || !c.Config.FailOnExpire {
			continue
		}
		if view.GetElapsed() >= conditionLimit(c.Config) {
			met = append(met, c.ID)
		}
	}
	if e.TimeLimit > 0 && view.GetElapsed() >= secondsToDuration(e.TimeLimit) {
		met = append(met, GlobalTimeLimitID)
	}
	return met
}

func conditionLimit(cfg ConditionConfig) time.Duration {
	if cfg.TimeLimit <= 0 {
		return DefaultTimeLimit
	}
	return secondsToDuration(cfg.TimeLimit)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
