package hsm

// validator enforces the structural invariants of one machine at state
// and transition registration time and during Initialize. Every failure
// is reported immediately; nothing is deferred to dispatch.
type validator struct {
	machine *StateMachine
}

func (v *validator) validateAddState(state Node, initial bool) error {
	if state == nil || state.base() == nil {
		return newError(ErrCodeNotAState, v.machine.Name(),
			"unable to add state of type %T", state)
	}
	if err := v.validateNotAdded(state); err != nil {
		return err
	}
	if initial {
		return v.validateInitial(state)
	}
	return nil
}

// validateNotAdded walks the whole hierarchy breadth-first to guarantee a
// state instance is registered under at most one machine.
func (v *validator) validateNotAdded(state Node) error {
	queue := []*StateMachine{v.machine.RootMachine()}
	for len(queue) > 0 {
		machine := queue[0]
		queue = queue[1:]
		if _, ok := machine.children[state.base()]; ok {
			return newError(ErrCodeStateAlreadyAdded, v.machine.Name(),
				"state %q is already added to machine %q", state.Name(), machine.Name())
		}
		for _, child := range machine.children {
			if sub, ok := child.(*StateMachine); ok {
				queue = append(queue, sub)
			}
		}
	}
	return nil
}

func (v *validator) validateInitial(state Node) error {
	if current := v.machine.initialChild(); current != nil {
		return newError(ErrCodeInitialConflict, v.machine.Name(),
			"unable to set initial state to %q, initial state is already set to %q",
			state.Name(), current.Name())
	}
	return nil
}

func (v *validator) validateAddTransition(from, to Node, events []string, inputs []any) error {
	if from == nil || from.base() == nil {
		return newError(ErrCodeUnknownState, v.machine.Name(),
			"unable to add transition from a nil state")
	}
	if _, ok := v.machine.children[from.base()]; !ok {
		return newError(ErrCodeUnknownState, v.machine.Name(),
			"unable to add transition from unknown state %q", from.Name())
	}
	if err := v.validateToState(to); err != nil {
		return err
	}
	if len(events) == 0 {
		return newError(ErrCodeNoEvents, v.machine.Name(),
			"unable to add transition without event names")
	}
	if len(inputs) == 0 {
		return newError(ErrCodeNoEvents, v.machine.Name(),
			"unable to add transition without input values")
	}
	return nil
}

// validateToState accepts nil (internal transition), the hierarchy root,
// or any substate of the root.
func (v *validator) validateToState(to Node) error {
	if to == nil {
		return nil
	}
	root := v.machine.RootMachine()
	if to.base() == root.base() || to.IsSubstate(root) {
		return nil
	}
	return newError(ErrCodeUnknownState, v.machine.Name(),
		"unable to add transition to unknown state %q", to.Name())
}

// validateInitialState runs for every machine visited by Initialize. A
// machine may have zero children, but with children it needs an initial
// one.
func (v *validator) validateInitialState(machine *StateMachine) error {
	if len(machine.children) > 0 && machine.initialChild() == nil {
		return newError(ErrCodeNoInitialState, machine.Name(),
			"machine %q has no initial state", machine.Name())
	}
	return nil
}
