package streaming

// Status is the lifecycle state of one slot's response.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
	StatusComplete  Status = "complete"
	StatusAborted   Status = "aborted"
	StatusError     Status = "error"
)

// AbortedMessage is the error text of an aborted response.
const AbortedMessage = "Request aborted by user"

// UnknownErrorMessage replaces an empty error text.
const UnknownErrorMessage = "Unknown error"

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusAborted || s == StatusError
}

// CanTransition reports whether s -> to is a legal step of
// idle -> streaming -> {complete | aborted | error}.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusIdle:
		return to == StatusStreaming
	case StatusStreaming:
		return to.IsTerminal()
	default:
		return false
	}
}

// ModelResponse is the run state of one slot.
type ModelResponse struct {
	SlotId   string        `json:"slotId"`
	Content  string        `json:"content"`
	Thinking string        `json:"thinking"`
	Metrics  TimingMetrics `json:"metrics"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
}
