package hsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStateNil(t *testing.T) {
	m := NewStateMachine("m")

	err := m.AddState(nil, false)
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotAState, CodeOf(err))
}

func TestAddStateTwice(t *testing.T) {
	m := NewStateMachine("m")
	sub := NewStateMachine("sub")
	s1 := NewState("s1")
	require.NoError(t, m.AddState(sub, true))
	require.NoError(t, m.AddState(s1, false))

	err := sub.AddState(s1, false)
	require.Error(t, err)
	assert.Equal(t, ErrCodeStateAlreadyAdded, CodeOf(err))
	assert.Contains(t, err.Error(), `state "s1" is already added to machine "m"`)

	err = m.AddState(s1, false)
	require.Error(t, err)
	assert.Equal(t, ErrCodeStateAlreadyAdded, CodeOf(err))
}

func TestInitialConflict(t *testing.T) {
	m := NewStateMachine("m")
	s1 := NewState("s1")
	s2 := NewState("s2")
	require.NoError(t, m.AddState(s1, true))

	err := m.AddState(s2, true)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInitialConflict, CodeOf(err))
	assert.Contains(t, err.Error(),
		`unable to set initial state to "s2", initial state is already set to "s1"`)
}

func TestSetInitialState(t *testing.T) {
	m := NewStateMachine("m")
	s1 := NewState("s1")
	s2 := NewState("s2")
	outsider := NewState("outsider")
	require.NoError(t, m.AddStates(s1, s2))

	err := m.SetInitialState(outsider)
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownState, CodeOf(err))

	err = m.SetInitialState(nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotAState, CodeOf(err))

	require.NoError(t, m.SetInitialState(s1))

	err = m.SetInitialState(s2)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInitialConflict, CodeOf(err))

	require.NoError(t, m.Initialize())
	assert.Same(t, s1, m.CurrentState())
}

func TestAddTransitionUnknownStates(t *testing.T) {
	m := NewStateMachine("m")
	sub := NewStateMachine("sub")
	s1 := NewState("s1")
	s11 := NewState("s11")
	stray := NewState("stray")
	require.NoError(t, m.AddState(s1, true))
	require.NoError(t, m.AddState(sub, false))
	require.NoError(t, sub.AddState(s11, true))

	err := m.AddTransition(stray, s1, []string{"go"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownState, CodeOf(err))
	assert.Contains(t, err.Error(), `unable to add transition from unknown state "stray"`)

	// From must be a direct child, not a deeper descendant.
	err = m.AddTransition(s11, s1, []string{"go"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownState, CodeOf(err))

	err = m.AddTransition(s1, stray, []string{"go"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownState, CodeOf(err))
	assert.Contains(t, err.Error(), `unable to add transition to unknown state "stray"`)

	err = m.AddTransition(nil, s1, []string{"go"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownState, CodeOf(err))

	// Any state in the hierarchy is a valid target, the root included.
	require.NoError(t, m.AddTransition(s1, s11, []string{"deep"}))
	require.NoError(t, m.AddTransition(s1, m, []string{"top"}))
	require.NoError(t, sub.AddTransition(s11, s1, []string{"out"}))
}

func TestAddTransitionWithoutEventsOrInputs(t *testing.T) {
	m := NewStateMachine("m")
	s1 := NewState("s1")
	s2 := NewState("s2")
	require.NoError(t, m.AddState(s1, true))
	require.NoError(t, m.AddState(s2, false))

	err := m.AddTransition(s1, s2, nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeNoEvents, CodeOf(err))
	assert.Contains(t, err.Error(), "without event names")

	err = m.AddTransition(s1, s2, []string{"go"}, WithInput())
	require.Error(t, err)
	assert.Equal(t, ErrCodeNoEvents, CodeOf(err))
	assert.Contains(t, err.Error(), "without input values")
}

func TestInitializeWithoutInitialState(t *testing.T) {
	m := NewStateMachine("m")
	require.NoError(t, m.AddState(NewState("s1"), false))
	require.NoError(t, m.AddState(NewState("s2"), false))

	err := m.Initialize()
	require.Error(t, err)
	assert.Equal(t, ErrCodeNoInitialState, CodeOf(err))
	assert.Contains(t, err.Error(), `machine "m" has no initial state`)
}

func TestInitializeReportsNestedMachine(t *testing.T) {
	m := NewStateMachine("m")
	sub := NewStateMachine("sub")
	require.NoError(t, m.AddState(sub, true))
	require.NoError(t, sub.AddState(NewState("s1"), false))

	err := m.Initialize()
	require.Error(t, err)
	assert.Equal(t, ErrCodeNoInitialState, CodeOf(err))
	assert.Contains(t, err.Error(), `machine "sub" has no initial state`)
}

func TestErrorFormatting(t *testing.T) {
	err := newError(ErrCodeUnknownState, "m", "unable to add transition from unknown state %q", "x")
	assert.Equal(t, `machine "m": unable to add transition from unknown state "x"`, err.Error())
	assert.Equal(t, ErrCodeUnknownState, CodeOf(err))

	assert.Equal(t, ErrCodeNone, CodeOf(nil))
}
