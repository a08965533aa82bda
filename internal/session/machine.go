package session

import "fmt"

type State int

const (
	Uninitialized State = iota
	Restoring
	Anonymous
	Authenticated
	Authenticating
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Restoring:
		return "restoring"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Authenticating:
		return "authenticating"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Loading reports whether a guard must wait before deciding.
func (s State) Loading() bool {
	return s == Uninitialized || s == Restoring || s == Authenticating
}

type Event string

const (
	EventRestore  Event = "restore"
	EventRestored Event = "restored"
	EventCleared  Event = "cleared"
	EventBegin    Event = "begin"
	EventSucceed  Event = "succeed"
	EventFail     Event = "fail"
	EventRevert   Event = "revert"
	EventSignOut  Event = "signOut"
)

var transitions = map[State]map[Event]State{
	Uninitialized: {
		EventRestore: Restoring,
		EventBegin:   Authenticating,
		EventSignOut: Anonymous,
	},
	Restoring: {
		EventRestored: Authenticated,
		EventCleared:  Anonymous,
		EventSignOut:  Anonymous,
	},
	Anonymous: {
		EventRestore: Restoring,
		EventBegin:   Authenticating,
		EventSucceed: Authenticated,
		EventFail:    Anonymous,
		EventSignOut: Anonymous,
	},
	Authenticated: {
		EventRestore: Restoring,
		EventBegin:   Authenticating,
		EventSucceed: Authenticated,
		EventSignOut: Anonymous,
	},
	Authenticating: {
		EventBegin:   Authenticating,
		EventSucceed: Authenticated,
		EventFail:    Anonymous,
		EventRevert:  Authenticated,
		EventSignOut: Anonymous,
	},
}

// Machine is the session state machine. It is not safe for concurrent use;
// the Controller serializes access.
type Machine struct {
	state State
}

func (m *Machine) State() State {
	return m.state
}

// Can reports whether ev is defined in the current state.
func (m *Machine) Can(ev Event) bool {
	_, ok := transitions[m.state][ev]
	return ok
}

// Fire applies ev. Undefined transitions leave the state unchanged.
func (m *Machine) Fire(ev Event) error {
	next, ok := transitions[m.state][ev]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, m.state)
	}
	m.state = next
	return nil
}
