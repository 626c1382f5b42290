// Package hsm implements a hierarchical state machine engine with UML
// statechart semantics: nested states, per-state event handlers with
// upward propagation, guarded transitions, internal and external
// transitions, and previous-leaf-state history reversion.
//
// Client code builds a tree of State and StateMachine nodes, registers
// transitions on the machine that owns each source state, calls
// Initialize once on the root, and then drives the machine by calling
// Dispatch on the root. The engine keeps no domain knowledge; everything
// application specific lives in handlers, conditions and actions.
//
// A machine is not safe for concurrent use. Dispatch runs to completion
// on the calling goroutine, and handlers must not call back into the same
// machine while a dispatch is in progress.
package hsm
