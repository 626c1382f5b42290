package hsm

import "log/slog"

// historyDepth bounds the per-machine state history and the root's leaf
// history.
const historyDepth = 32

// StateMachine is a composite state. It owns a set of child states,
// tracks which child is current, and keeps the transition table for
// transitions whose source is one of its children. Because a machine is
// itself a Node it can be nested inside another machine, forming the
// hierarchy. Dispatch must always go through the root machine.
//
// A machine is not safe for concurrent use. Dispatch runs to completion
// on the calling goroutine with no suspension points, and handlers must
// not re-enter the same machine while a dispatch is in progress.
type StateMachine struct {
	*State

	children    map[*State]Node
	state       Node // current child; nil before Initialize or for a leaf machine
	transitions *transitionTable
	validator   *validator

	stateStack *Stack[Node] // previous local children, pushed on exit
	leafStack  *Stack[Node] // previous leaf states; used on the root only
	dataStack  *Stack[any]

	logger *slog.Logger
}

// MachineOption configures a StateMachine at construction time.
type MachineOption func(*StateMachine)

// WithLogger sets the logger used for dispatch debug logging.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *StateMachine) { m.logger = logger }
}

// NewStateMachine creates an empty composite state.
func NewStateMachine(name string, opts ...MachineOption) *StateMachine {
	m := &StateMachine{
		State:      NewState(name),
		children:   make(map[*State]Node),
		stateStack: NewStack[Node](historyDepth),
		leafStack:  NewStack[Node](historyDepth),
		dataStack:  NewStack[any](0),
		logger:     slog.Default(),
	}
	m.State.owner = m
	m.transitions = newTransitionTable(m)
	m.validator = &validator{machine: m}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddState attaches state as a child of this machine. A state instance
// belongs to at most one machine in the whole hierarchy. When initial is
// true the state becomes the child entered by Initialize and whenever a
// transition targets this machine.
func (m *StateMachine) AddState(state Node, initial bool) error {
	if err := m.validator.validateAddState(state, initial); err != nil {
		return err
	}
	state.setParent(m)
	state.setInitial(initial)
	m.children[state.base()] = state
	return nil
}

// AddStates attaches several non-initial children at once.
func (m *StateMachine) AddStates(states ...Node) error {
	for _, state := range states {
		if err := m.AddState(state, false); err != nil {
			return err
		}
	}
	return nil
}

// SetInitialState marks an already-attached child as the initial one.
func (m *StateMachine) SetInitialState(state Node) error {
	if state == nil || state.base() == nil {
		return newError(ErrCodeNotAState, m.Name(), "unable to set a nil initial state")
	}
	if _, ok := m.children[state.base()]; !ok {
		return newError(ErrCodeUnknownState, m.Name(),
			"unable to set initial state to unknown state %q", state.Name())
	}
	if err := m.validator.validateInitial(state); err != nil {
		return err
	}
	state.setInitial(true)
	return nil
}

func (m *StateMachine) initialChild() Node {
	for _, child := range m.children {
		if child.isInitial() {
			return child
		}
	}
	return nil
}

// AddTransition declares a transition from a direct child of this
// machine. A nil to declares an internal transition: its action runs but
// no state is exited or entered. The transition is installed once per
// (event name, input value) pair; without WithInput it matches only
// events carrying a nil input. Transitions sharing a key are tried in
// registration order and the first whose condition returns true wins.
func (m *StateMachine) AddTransition(from, to Node, events []string, opts ...TransitionOption) error {
	t := &Transition{From: from, To: to, events: events, inputs: []any{nil}}
	for _, opt := range opts {
		opt(t)
	}
	if err := m.validator.validateAddTransition(from, to, t.events, t.inputs); err != nil {
		return err
	}
	for _, input := range t.inputs {
		for _, event := range t.events {
			m.transitions.add(transitionKey{from: from.base(), event: event, input: input}, t)
		}
	}
	return nil
}

// Initialize walks the hierarchy breadth-first setting every machine's
// current child to its initial child, down to the leaves. It must be
// called on the root before the first dispatch and may be called again
// later to reset the hierarchy to its initial configuration. Transition
// tables are additive and survive re-initialization.
func (m *StateMachine) Initialize() error {
	queue := []*StateMachine{m}
	for len(queue) > 0 {
		machine := queue[0]
		queue = queue[1:]
		if err := m.validator.validateInitialState(machine); err != nil {
			return err
		}
		machine.state = machine.initialChild()
		for _, child := range machine.children {
			if sub, ok := child.(*StateMachine); ok {
				queue = append(queue, sub)
			}
		}
	}
	return nil
}

// CurrentState returns this machine's current direct child, nil before
// Initialize.
func (m *StateMachine) CurrentState() Node { return m.state }

// RootMachine returns the machine at the top of the hierarchy.
func (m *StateMachine) RootMachine() *StateMachine {
	root := m
	for root.Parent() != nil {
		root = root.Parent()
	}
	return root
}

// LeafState returns the deepest current state of the whole hierarchy, the
// effective current state for event handling.
func (m *StateMachine) LeafState() Node {
	return leafOf(m.RootMachine())
}

// leafOf descends through current-child pointers to the deepest state
// reachable from node.
func leafOf(node Node) Node {
	for {
		machine, ok := node.(*StateMachine)
		if !ok || machine.state == nil {
			return node
		}
		node = machine.state
	}
}

// DataStack is a general purpose stack exposed to client actions, e.g.
// for building a pushdown automaton on top of the machine.
func (m *StateMachine) DataStack() *Stack[any] { return m.dataStack }

// StateHistory returns this machine's stack of previously current
// children.
func (m *StateMachine) StateHistory() *Stack[Node] { return m.stateStack }

// LeafHistory returns the root's stack of previously occupied leaf
// states, consumed by SetPreviousLeafState and RevertToPreviousLeafState.
func (m *StateMachine) LeafHistory() *Stack[Node] { return m.leafStack }

// Dispatch routes event through the hierarchy. The current leaf state
// handles it first, propagating upward per the handler rules, then the
// innermost enclosing machine with a matching transition performs it.
// Events matching no handler and no transition are dropped silently; that
// is a normal outcome, not an error. Dispatch must be called on the root
// machine after Initialize.
func (m *StateMachine) Dispatch(event *Event) error {
	if m.Parent() != nil {
		return newError(ErrCodeNotRoot, m.Name(), "dispatch must be called on the root machine")
	}
	if m.state == nil && len(m.children) > 0 {
		return newError(ErrCodeNotInitialized, m.Name(), "dispatch before initialize")
	}
	event.machine = m
	leaf := m.LeafState()
	leaf.handle(event)

	transition := m.getTransition(leaf, event)
	if transition == nil {
		m.logger.Debug("no transition", "machine", m.Name(), "event", event.Name, "state", leaf.Name())
		return nil
	}
	if transition.To == nil {
		fire(transition.action, leaf, event)
		return nil
	}
	m.logger.Debug("transition", "machine", m.Name(), "event", event.Name,
		"from", transition.From.Name(), "to", transition.To.Name())
	fire(transition.before, leaf, event)
	top := m.exitStates(event, transition.From, transition.To)
	fire(transition.action, leaf, event)
	m.enterStates(event, top, transition.To)
	fire(transition.after, m.LeafState(), event)
	return nil
}

// getTransition walks outward from the leaf's parent machine and returns
// the first match. Each machine's table is keyed by its own current
// child, so outer machines see the event through progressively coarser
// source states.
func (m *StateMachine) getTransition(leaf Node, event *Event) *Transition {
	machine := leaf.Parent()
	for machine != nil {
		if transition := machine.transitions.match(leaf, event); transition != nil {
			return transition
		}
		machine = machine.Parent()
	}
	return nil
}

// exitStates walks up from the current leaf firing exit events until it
// reaches a state enclosing both transition endpoints; that pivot state
// is returned. A self-transition still exits and re-enters its state
// exactly once instead of short-circuiting on the trivially true
// ancestor check. Each exited state is pushed onto its parent's local
// history and the parent's current child is reset to the initial child.
// The pre-transition leaf is recorded on the root's leaf history for
// later reversion.
func (m *StateMachine) exitStates(event *Event, from, to Node) Node {
	state := m.LeafState()
	m.leafStack.Push(state)
	for state.Parent() != nil &&
		(!(from.IsSubstate(state) && to.IsSubstate(state)) ||
			(sameNode(state, from) && sameNode(from, to))) {
		exitEvent := newInternalEvent(EventExit, event)
		exitEvent.machine = m
		state.handle(exitEvent)
		parent := state.Parent()
		parent.stateStack.Push(state)
		parent.state = parent.initialChild()
		state = parent
	}
	return state
}

// enterStates descends from the pivot to the target's leaf, firing enter
// events outermost first and pointing each machine's current child at
// the entered state. When the target is a composite its initial chain is
// entered transitively.
func (m *StateMachine) enterStates(event *Event, top, to Node) {
	var path []Node
	state := leafOf(to)
	for state.Parent() != nil && !sameNode(state, top) {
		path = append(path, state)
		state = state.Parent()
	}
	for i := len(path) - 1; i >= 0; i-- {
		state := path[i]
		enterEvent := newInternalEvent(EventEnter, event)
		enterEvent.machine = m
		state.handle(enterEvent)
		state.Parent().state = state
	}
}

// SetPreviousLeafState transitions back to the most recently recorded
// leaf state. The current leaf is recorded in its place as part of the
// exit phase, so repeated calls toggle between the two most recent
// leaves while growing the history. With no history this is a no-op.
func (m *StateMachine) SetPreviousLeafState(event *Event) error {
	if m.Parent() != nil {
		return newError(ErrCodeNotRoot, m.Name(), "history reversion must be called on the root machine")
	}
	if event != nil {
		event.machine = m
	}
	to, ok := m.leafStack.Peek()
	if !ok {
		return nil
	}
	from := m.LeafState()
	top := m.exitStates(event, from, to)
	m.enterStates(event, top, to)
	return nil
}

// RevertToPreviousLeafState transitions back like SetPreviousLeafState
// but additionally drops the used history entries, so the next reversion
// goes one step further back instead of toggling.
func (m *StateMachine) RevertToPreviousLeafState(event *Event) error {
	if err := m.SetPreviousLeafState(event); err != nil {
		return err
	}
	m.leafStack.Pop()
	m.leafStack.Pop()
	return nil
}
