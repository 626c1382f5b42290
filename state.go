package hsm

// HandlerFunc reacts to an event reaching a state. The state argument is
// the node whose handler map matched; for transition callbacks it is the
// leaf state before the transition (after, for the after callback).
// Return values are not used.
type HandlerFunc func(state Node, event *Event)

// ConditionFunc guards a transition. Returning true selects the
// transition. The bool return type keeps selection strict by
// construction; there is no truthy value that can select a transition by
// accident.
type ConditionFunc func(state Node, event *Event) bool

// Node is a state tree node: either a plain State leaf or a StateMachine
// composite. The interface is sealed; both implementations live in this
// package.
type Node interface {
	Name() string
	Parent() *StateMachine
	IsSubstate(other Node) bool
	AddHandler(eventName string, handler HandlerFunc)

	base() *State
	handle(event *Event)
	setParent(parent *StateMachine)
	setInitial(initial bool)
	isInitial() bool
}

// State is a leaf node in the state tree. It owns a mapping of event
// names to handlers and knows its enclosing machine. A State is attached
// to exactly one machine via AddState and is never reparented.
type State struct {
	name     string
	parent   *StateMachine
	handlers map[string]HandlerFunc
	initial  bool

	// owner points back to the StateMachine fronted by this State when it
	// is embedded in one; handlers then receive the machine, not its base.
	owner Node
}

// NewState creates a detached leaf state.
func NewState(name string) *State {
	return &State{
		name:     name,
		handlers: make(map[string]HandlerFunc),
	}
}

// Name returns the state name.
func (s *State) Name() string { return s.name }

// Parent returns the enclosing machine, or nil for the hierarchy root.
func (s *State) Parent() *StateMachine { return s.parent }

// AddHandler registers handler for events named eventName. Registering a
// second handler under the same name replaces the first.
func (s *State) AddHandler(eventName string, handler HandlerFunc) {
	s.handlers[eventName] = handler
}

// IsSubstate reports whether other is this state itself or one of its
// ancestors.
func (s *State) IsSubstate(other Node) bool {
	if other == nil {
		return false
	}
	if other.base() == s {
		return true
	}
	for p := s.parent; p != nil; p = p.Parent() {
		if p.base() == other.base() {
			return true
		}
	}
	return false
}

// handle runs the handler registered for the event, if any, and then
// forwards the event to the parent state while propagation is enabled.
// Running a handler disables propagation; the handler may re-enable it.
// Enter and exit events are never forwarded.
func (s *State) handle(event *Event) {
	if handler, ok := s.handlers[event.Name]; ok {
		event.Propagate = false
		handler(s.node(), event)
	}
	if s.parent != nil && event.Propagate && event.Name != EventEnter && event.Name != EventExit {
		s.parent.handle(event)
	}
}

// node returns the Node identity handlers and callbacks should see.
func (s *State) node() Node {
	if s.owner != nil {
		return s.owner
	}
	return s
}

func (s *State) base() *State { return s }

func (s *State) setParent(parent *StateMachine) { s.parent = parent }

func (s *State) setInitial(initial bool) { s.initial = initial }

func (s *State) isInitial() bool { return s.initial }

// sameNode compares node identity. A StateMachine and its embedded State
// anchor count as the same node.
func sameNode(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.base() == b.base()
}
