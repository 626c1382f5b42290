package hsm

// Transition links a source state to a target under one or more event
// names. A nil To declares an internal transition: Action runs but no
// state is exited or entered. To may be any state in the hierarchy, so a
// transition can jump between arbitrarily nested states. From must be a
// direct child of the machine the transition is registered on.
type Transition struct {
	From Node
	To   Node

	events    []string
	inputs    []any
	condition ConditionFunc
	action    HandlerFunc
	before    HandlerFunc
	after     HandlerFunc
}

// TransitionOption configures a transition at registration time.
type TransitionOption func(*Transition)

// WithInput restricts the transition to events carrying one of the given
// input values. Without this option the transition matches only events
// with a nil input.
func WithInput(values ...any) TransitionOption {
	return func(t *Transition) { t.inputs = values }
}

// WithCondition guards the transition. Candidates sharing a key are tried
// in registration order and the first whose condition returns true wins.
func WithCondition(condition ConditionFunc) TransitionOption {
	return func(t *Transition) { t.condition = condition }
}

// WithAction runs fn between the exit and enter phases of the transition,
// or as the only effect of an internal transition.
func WithAction(fn HandlerFunc) TransitionOption {
	return func(t *Transition) { t.action = fn }
}

// WithBefore runs fn before any state is exited.
func WithBefore(fn HandlerFunc) TransitionOption {
	return func(t *Transition) { t.before = fn }
}

// WithAfter runs fn after the target state has been entered, with the new
// leaf state.
func WithAfter(fn HandlerFunc) TransitionOption {
	return func(t *Transition) { t.after = fn }
}

type transitionKey struct {
	from  *State
	event string
	input any
}

// transitionTable indexes one machine's transitions by (current child,
// event name, event input). Multiple transitions may share a key; lookup
// preserves registration order.
type transitionTable struct {
	machine *StateMachine
	entries map[transitionKey][]*Transition
}

func newTransitionTable(machine *StateMachine) *transitionTable {
	return &transitionTable{
		machine: machine,
		entries: make(map[transitionKey][]*Transition),
	}
}

func (t *transitionTable) add(key transitionKey, transition *Transition) {
	t.entries[key] = append(t.entries[key], transition)
}

// match returns the first transition registered under the machine's
// current child for this event whose condition accepts it. Conditions are
// evaluated against the leaf state as it was before any exits.
func (t *transitionTable) match(leaf Node, event *Event) *Transition {
	current := t.machine.state
	if current == nil {
		return nil
	}
	key := transitionKey{from: current.base(), event: event.Name, input: event.Input}
	for _, transition := range t.entries[key] {
		if transition.condition == nil || transition.condition(leaf, event) {
			return transition
		}
	}
	return nil
}

// fire invokes an optional transition callback.
func fire(h HandlerFunc, state Node, event *Event) {
	if h != nil {
		h(state, event)
	}
}
