package statemachine

import (
	"errors"
	"fmt"
)

// ErrNoTransition indicates the event is not accepted in the current state.
type ErrNoTransition[S, E comparable] struct {
	From  S
	Event E
}

func (e *ErrNoTransition[S, E]) Error() string {
	return fmt.Sprintf("no transition available from state '%v' for event '%v'", e.From, e.Event)
}

// IsNoTransition reports whether err is an *ErrNoTransition for the given types.
func IsNoTransition[S, E comparable](err error) bool {
	var e *ErrNoTransition[S, E]
	return errors.As(err, &e)
}
