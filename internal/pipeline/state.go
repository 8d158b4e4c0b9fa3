package pipeline

// State identifies the phase a transcription job is in. Transitions are
// strictly forward: a job never re-enters an earlier state.
type State int

const (
	StatePlanned State = iota
	StateSplitting
	StateDispatching
	StateMerging
	StateCleanup
	StateDone
	StateFailed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StateSplitting:
		return "splitting"
	case StateDispatching:
		return "dispatching"
	case StateMerging:
		return "merging"
	case StateCleanup:
		return "cleanup"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressFunc receives state transitions and, during dispatch, the number
// of chunks completed so far out of the total. Outside dispatch both counts
// are zero. Calls are serialized; implementations need not lock.
type ProgressFunc func(state State, completed, total int)
