package domain

// State is the lifecycle of an execution strategy.
// Uninitialized -> Simulated | HostConnecting -> HostConnected | HostUnavailable.
// A connected host that exits moves to HostDisconnected. The mode is chosen once
// at start and never changes afterwards.
type State string

const (
	StateUninitialized    State = "uninitialized"
	StateSimulated        State = "simulated"         // Responses are synthesized locally
	StateHostConnecting   State = "host_connecting"   // Launching the host link
	StateHostConnected    State = "host_connected"    // Commands travel to the host
	StateHostUnavailable  State = "host_unavailable"  // Placeholder responses only
	StateHostDisconnected State = "host_disconnected" // Host exited; commands fail
)

// Ready reports whether commands may be dispatched in this state.
func (s State) Ready() bool {
	switch s {
	case StateSimulated, StateHostConnected, StateHostUnavailable:
		return true
	}
	return false
}

func (s State) String() string {
	return string(s)
}
