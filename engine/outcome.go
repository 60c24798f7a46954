package engine

import "github.com/pthm-cable/tribes/recipe"

// Outcome is the result class of one Apply call.
type Outcome uint8

const (
	Completed Outcome = iota // Every step ran; retire the node
	Blocked                  // A requirement is unmet; retry on a later tick
	Suspended                // A step asked to stop; resume at Result.NextStep
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Blocked:
		return "blocked"
	case Suspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Injection asks the caller to attach a recipe as a prerequisite of the node
// that was applied, ahead of it.
type Injection struct {
	Recipe *recipe.Recipe
	Mode   ResolutionMode
	Reason string
}

// CyclicRequest asks the caller to re-attach a recipe every PeriodSeconds.
type CyclicRequest struct {
	Recipe        *recipe.Recipe
	PeriodSeconds int
}

// Effects are the structural changes one Apply call asks the caller to make.
type Effects struct {
	Injections  []Injection
	Cyclic      []CyclicRequest
	WaitSeconds int   // delay registered by wait()
	Err         error // UnsupportedOpcodeError or InjectionDepthError
}

// Result reports one Apply call.
type Result struct {
	Outcome  Outcome
	NextStep int // valid when Outcome is Suspended
	Effects
}
