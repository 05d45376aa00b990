package session

// State is the backend-authoritative session lifecycle. The client never
// sets it directly; it requests transitions through commands and observes
// confirmed transitions through session-state-changed events. Wire form is
// the lowercase string the engine serializes.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
	StateCancelled  State = "cancelled"
)

// Status is the client-derived projection of State that the UI renders.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusRecording
	StatusProcessing
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusRecording:
		return "recording"
	case StatusProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// StatusForState projects a confirmed backend state onto the UI status.
// ok is false for state values this client does not recognize; callers
// treat those as a no-op rather than guessing.
func StatusForState(st State) (Status, bool) {
	switch st {
	case StateIdle, StateCompleted, StateError, StateCancelled:
		return StatusReady, true
	case StateRecording:
		return StatusRecording, true
	case StateProcessing:
		return StatusProcessing, true
	default:
		return StatusLoading, false
	}
}
