package hsm

import "github.com/google/uuid"

// Event names reserved by the dispatch engine. Handlers registered under
// these names run during the exit/enter phase of a transition. Enter and
// exit events are local to one state: they are never forwarded to parent
// states, even if a handler re-enables propagation.
const (
	EventEnter = "enter"
	EventExit  = "exit"
)

// CargoSourceEvent is the cargo key under which synthetic enter/exit
// events carry the event that triggered the transition.
const CargoSourceEvent = "source_event"

// Event is dispatched through a state machine hierarchy. Name selects
// handlers and transitions. Input further discriminates transitions; a
// pushdown parser typically feeds one character per dispatch through it.
//
// Propagate starts true and is cleared as soon as any handler runs. A
// handler that wants the event to keep bubbling to parent states must set
// it back to true before returning.
type Event struct {
	Name      string
	Input     any
	Propagate bool
	Cargo     map[string]any

	id      string
	machine *StateMachine
}

// NewEvent creates an event with a fresh unique ID.
func NewEvent(name string) *Event {
	return &Event{
		Name:      name,
		Propagate: true,
		Cargo:     make(map[string]any),
		id:        uuid.New().String(),
	}
}

// WithInput sets the input discriminator and returns the event.
func (e *Event) WithInput(input any) *Event {
	e.Input = input
	return e
}

// WithCargo attaches an arbitrary payload value and returns the event.
func (e *Event) WithCargo(key string, value any) *Event {
	if e.Cargo == nil {
		e.Cargo = make(map[string]any)
	}
	e.Cargo[key] = value
	return e
}

// ID returns the identifier assigned at construction.
func (e *Event) ID() string { return e.id }

// Machine returns the root machine handling this event. It is stamped by
// Dispatch and is nil before the event has been dispatched.
func (e *Event) Machine() *StateMachine { return e.machine }

// newInternalEvent builds the synthetic enter/exit events fired while a
// transition unwinds and rebuilds the state path. They never propagate
// and reference the triggering event through their cargo.
func newInternalEvent(name string, source *Event) *Event {
	e := NewEvent(name)
	e.Propagate = false
	if source != nil {
		e.Input = source.Input
		e.Cargo[CargoSourceEvent] = source
	}
	return e
}
