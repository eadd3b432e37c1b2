package pipeline

// State is the position of a session in the capture -> classify -> mint flow
type State string

const (
	AwaitingCapture State = "awaiting_capture"
	ReadyToClassify State = "ready_to_classify"
	Classifying     State = "classifying"
	Minting         State = "minting"
	Succeeded       State = "succeeded"
	Failed          State = "failed"
)

// IsTerminal reports whether the state only leaves through a reset.
func IsTerminal(s State) bool {
	switch s {
	case Succeeded, Failed:
		return true
	default:
		return false
	}
}

// InFlight reports whether an external call is outstanding in this state.
func InFlight(s State) bool {
	return s == Classifying || s == Minting
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case AwaitingCapture:
		return to == ReadyToClassify
	case ReadyToClassify:
		return to == ReadyToClassify || to == Classifying || to == AwaitingCapture
	case Classifying:
		return to == Minting || to == Failed
	case Minting:
		return to == Succeeded || to == Failed
	case Succeeded, Failed:
		return to == AwaitingCapture
	default:
		return false
	}
}
