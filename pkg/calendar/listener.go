package calendar

// ChangeKind classifies a store state change delivered to listeners.
type ChangeKind string

const (
	EventAdded      ChangeKind = "added"
	EventRemoved    ChangeKind = "removed"
	EventEdited     ChangeKind = "edited"
	RequestResolved ChangeKind = "resolved"
)

// Change is the listener notification payload.
type Change struct {
	Kind  ChangeKind
	Event *Event
}

// Listener receives store change notifications. Fan-out happens in
// registration order and completes before the triggering store call
// returns.
type Listener interface {
	Update(Change)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Change)

func (f ListenerFunc) Update(c Change) { f(c) }
