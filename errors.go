package hsm

import "fmt"

// ErrorCode identifies a class of structural error.
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// A nil node was registered as a state
	ErrCodeNotAState
	// The state is already attached somewhere in the hierarchy
	ErrCodeStateAlreadyAdded
	// Another child of the machine is already marked initial
	ErrCodeInitialConflict
	// A transition endpoint is not part of the machine or hierarchy
	ErrCodeUnknownState
	// A transition was declared without event names or input values
	ErrCodeNoEvents
	// A machine with children has no initial child
	ErrCodeNoInitialState
	// Dispatch or history reversion before Initialize
	ErrCodeNotInitialized
	// Dispatch on a machine that is not the hierarchy root
	ErrCodeNotRoot
	// A declarative definition could not be parsed or built
	ErrCodeBadDefinition
)

// Error is the single error kind raised by registration, initialization
// and dispatch. Machine names the machine the offending call was made on
// and Message names the offending state or transition. All failures are
// programmer errors surfaced synchronously at the call site; unmatched
// events are not errors and are silently ignored.
type Error struct {
	Code    ErrorCode
	Machine string
	Message string
}

func (e *Error) Error() string {
	if e.Machine == "" {
		return e.Message
	}
	return fmt.Sprintf("machine %q: %s", e.Machine, e.Message)
}

func newError(code ErrorCode, machine, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Machine: machine,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeNone for foreign
// errors.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrCodeNone
}
