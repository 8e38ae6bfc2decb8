// Package statemachine implements a small generic finite state machine.
//
// States and events are any comparable types, usually string-based enums:
//
//	type phase string
//	type signal string
//
//	m := statemachine.New[phase, signal]("idle",
//		statemachine.WithTransition[phase, signal]("idle", "start", "running"),
//		statemachine.WithTransitions[phase, signal]("stop", "idle", "running", "paused"),
//		statemachine.WithHook[phase, signal](func(ctx context.Context, t statemachine.Transition[phase, signal]) {
//			log.Printf("%s -> %s on %s", t.From, t.To, t.Event)
//		}),
//	)
//	if _, err := m.Fire(ctx, "start"); err != nil { ... }
//
// Fire is atomic with respect to other calls; hooks run after the change is
// committed and see transitions in the order they happened per goroutine.
package statemachine
