// Package session implements spec §4.6: the radio handle/session state
// machine, its sync sequence, keepalive, and the typed controllers a
// caller uses to send commands with optimistic snapshot updates.
package session

// State is one node of the connection state machine (spec §4.6
// "Connection state machine").
type State int

const (
	Disconnected State = iota
	ConnectingControl
	AwaitingHandle
	Syncing
	EstablishingDataPlane
	Ready
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case ConnectingControl:
		return "connecting_control"
	case AwaitingHandle:
		return "awaiting_handle"
	case Syncing:
		return "syncing"
	case EstablishingDataPlane:
		return "establishing_data_plane"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// transitions encodes the table in spec §4.6. A transition not listed
// here is invalid and Handle.setState rejects it.
var transitions = map[State][]State{
	Disconnected:          {ConnectingControl},
	ConnectingControl:     {AwaitingHandle, Disconnected},
	AwaitingHandle:        {Syncing, Disconnected},
	Syncing:               {EstablishingDataPlane, Disconnected},
	EstablishingDataPlane: {Ready, Disconnected},
	Ready:                 {Disconnected},
}

func validTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
