package simulate

import "math/rand"

// Action is the kind of request a simulated user performs.
type Action int

// Action kinds, in reporting order.
const (
	ActionSubmit Action = iota
	ActionTop
	ActionRank
)

// Cumulative selection weights: 80% score submissions (write-heavy
// simulation), 10% top-player queries, 10% rank lookups.
const (
	submitCutoff = 0.8
	topCutoff    = 0.9
)

func (a Action) String() string {
	switch a {
	case ActionSubmit:
		return "submit"
	case ActionTop:
		return "top"
	case ActionRank:
		return "rank"
	default:
		return "unknown"
	}
}

// Actions returns every action kind in reporting order.
func Actions() []Action {
	return []Action{ActionSubmit, ActionTop, ActionRank}
}

// Selector picks the action for one worker iteration.
type Selector func(r *rand.Rand) Action

// WeightedSelector draws one uniform value in [0,1) and maps it through the
// cumulative weights.
func WeightedSelector(r *rand.Rand) Action {
	v := r.Float64()
	switch {
	case v < submitCutoff:
		return ActionSubmit
	case v < topCutoff:
		return ActionTop
	default:
		return ActionRank
	}
}

// FixedSelector always picks the given action. Useful for targeted runs
// that exercise a single endpoint.
func FixedSelector(action Action) Selector {
	return func(_ *rand.Rand) Action {
		return action
	}
}
