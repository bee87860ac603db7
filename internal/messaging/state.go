package messaging

// State is the lifecycle of a consumer instance:
// UNINITIALIZED -> CONNECTED -> LISTENING -> DISCONNECTED.
type State int

const (
	StateUninitialized State = iota
	StateConnected
	StateListening
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateConnected:
		return "CONNECTED"
	case StateListening:
		return "LISTENING"
	case StateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Ready reports whether the instance holds a usable transport link.
func (s State) Ready() bool {
	return s == StateConnected || s == StateListening
}
