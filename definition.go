package hsm

import "gopkg.in/yaml.v3"

// Definition is a declarative machine description, typically loaded from
// YAML. It captures structure only: states, initial flags and the
// transition graph. Behavior is bound by name from a Callbacks registry
// when the definition is built, so runtime state never round-trips
// through the document.
type Definition struct {
	Name        string          `yaml:"name"`
	States      []StateDef      `yaml:"states"`
	Transitions []TransitionDef `yaml:"transitions"`
}

// StateDef describes one state. A state with nested States or its own
// Transitions becomes a StateMachine; otherwise it is a leaf State.
// Handlers maps event names to handler names from the registry.
type StateDef struct {
	Name        string            `yaml:"name"`
	Initial     bool              `yaml:"initial"`
	States      []StateDef        `yaml:"states"`
	Handlers    map[string]string `yaml:"handlers"`
	Transitions []TransitionDef   `yaml:"transitions"`
}

// TransitionDef describes one transition. From must name a direct child
// of the enclosing state; To may name any state in the document, or be
// empty for an internal transition. Condition, Action, Before and After
// name registry entries.
type TransitionDef struct {
	From      string   `yaml:"from"`
	To        string   `yaml:"to"`
	Events    []string `yaml:"events"`
	Inputs    []string `yaml:"inputs"`
	Condition string   `yaml:"condition"`
	Action    string   `yaml:"action"`
	Before    string   `yaml:"before"`
	After     string   `yaml:"after"`
}

// Callbacks resolves the handler, action and condition names referenced
// by a Definition.
type Callbacks struct {
	Handlers   map[string]HandlerFunc
	Conditions map[string]ConditionFunc
}

func (c Callbacks) handler(name string) (HandlerFunc, bool) {
	h, ok := c.Handlers[name]
	return h, ok
}

func (c Callbacks) condition(name string) (ConditionFunc, bool) {
	cond, ok := c.Conditions[name]
	return cond, ok
}

// ParseDefinition decodes a YAML document into a Definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, newError(ErrCodeBadDefinition, def.Name, "unable to parse definition: %v", err)
	}
	return &def, nil
}

// pendingTransitions associates a built machine with the transition
// definitions declared at its level; they are applied only after the
// whole tree exists, since targets may live anywhere in the hierarchy.
type pendingTransitions struct {
	machine *StateMachine
	defs    []TransitionDef
}

// Build constructs and initializes a StateMachine from the definition.
func (d *Definition) Build(callbacks Callbacks, opts ...MachineOption) (*StateMachine, error) {
	machine := NewStateMachine(d.Name, opts...)
	index := make(map[string]Node)
	pending := []pendingTransitions{{machine: machine, defs: d.Transitions}}

	var build func(parent *StateMachine, defs []StateDef) error
	build = func(parent *StateMachine, defs []StateDef) error {
		for _, def := range defs {
			if _, dup := index[def.Name]; dup {
				return newError(ErrCodeBadDefinition, d.Name, "duplicate state name %q", def.Name)
			}
			var node Node
			if len(def.States) > 0 || len(def.Transitions) > 0 {
				sub := NewStateMachine(def.Name)
				if err := parent.AddState(sub, def.Initial); err != nil {
					return err
				}
				if err := build(sub, def.States); err != nil {
					return err
				}
				pending = append(pending, pendingTransitions{machine: sub, defs: def.Transitions})
				node = sub
			} else {
				state := NewState(def.Name)
				if err := parent.AddState(state, def.Initial); err != nil {
					return err
				}
				node = state
			}
			for eventName, handlerName := range def.Handlers {
				handler, ok := callbacks.handler(handlerName)
				if !ok {
					return newError(ErrCodeBadDefinition, d.Name,
						"state %q references unknown handler %q", def.Name, handlerName)
				}
				node.AddHandler(eventName, handler)
			}
			index[def.Name] = node
		}
		return nil
	}
	if err := build(machine, d.States); err != nil {
		return nil, err
	}

	for _, p := range pending {
		for _, def := range p.defs {
			if err := d.applyTransition(p.machine, def, callbacks, index); err != nil {
				return nil, err
			}
		}
	}
	if err := machine.Initialize(); err != nil {
		return nil, err
	}
	return machine, nil
}

func (d *Definition) applyTransition(machine *StateMachine, def TransitionDef, callbacks Callbacks, index map[string]Node) error {
	from, ok := index[def.From]
	if !ok {
		return newError(ErrCodeBadDefinition, d.Name,
			"transition references unknown state %q", def.From)
	}
	var to Node
	if def.To != "" {
		to, ok = index[def.To]
		if !ok {
			return newError(ErrCodeBadDefinition, d.Name,
				"transition references unknown state %q", def.To)
		}
	}
	var opts []TransitionOption
	if len(def.Inputs) > 0 {
		values := make([]any, len(def.Inputs))
		for i, input := range def.Inputs {
			values[i] = input
		}
		opts = append(opts, WithInput(values...))
	}
	if def.Condition != "" {
		cond, ok := callbacks.condition(def.Condition)
		if !ok {
			return newError(ErrCodeBadDefinition, d.Name,
				"transition references unknown condition %q", def.Condition)
		}
		opts = append(opts, WithCondition(cond))
	}
	for _, ref := range []struct {
		name string
		opt  func(HandlerFunc) TransitionOption
	}{
		{def.Action, WithAction},
		{def.Before, WithBefore},
		{def.After, WithAfter},
	} {
		if ref.name == "" {
			continue
		}
		fn, ok := callbacks.handler(ref.name)
		if !ok {
			return newError(ErrCodeBadDefinition, d.Name,
				"transition references unknown callback %q", ref.name)
		}
		opts = append(opts, ref.opt(fn))
	}
	return machine.AddTransition(from, to, def.Events, opts...)
}
