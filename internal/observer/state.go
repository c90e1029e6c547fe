package observer

// State is the inferred availability of a Minecraft server.
//
// Values are ordered by increasing confidence that the server is usable,
// so callers may compare them (state >= StateProvedStarting means a process
// is at least listening).
type State int

const (
	// StateUnknown means no classification was possible, either because no
	// probe has run yet or because the probe failed in an unclassified way.
	StateUnknown State = iota

	// StateOffline means the connection was actively refused.
	StateOffline

	// StateAssumedStarting means the connection was refused, but a start was
	// announced through AssumeStarting and its window has not elapsed.
	StateAssumedStarting

	// StateProvedStarting means the TCP connection was accepted but the
	// status handshake broke before completing.
	StateProvedStarting

	// StateOnline means the status handshake completed.
	StateOnline
)

// String returns the human-readable description of a state.
func (s State) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateAssumedStarting:
		return "assumed to be starting"
	case StateProvedStarting:
		return "starting"
	case StateOnline:
		return "online"
	default:
		return "unknown"
	}
}

// Name returns the machine-friendly identifier of a state.
func (s State) Name() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateAssumedStarting:
		return "assumed_starting"
	case StateProvedStarting:
		return "proved_starting"
	case StateOnline:
		return "online"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state as its snake_case Name.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.Name() + `"`), nil
}
