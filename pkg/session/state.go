package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/targetdesk/pkg/logger"
	"github.com/dmitrymomot/targetdesk/pkg/statemachine"
)

// State is the lifecycle position of the session.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateInitializing    State = "initializing"
	StateLoggingIn       State = "logging_in"
	StateAuthenticated   State = "authenticated"
)

// Verification tracks whether the in-memory profile has been confirmed by the server.
type Verification string

const (
	Unverified Verification = "unverified"
	Verifying  Verification = "verifying"
	Verified   Verification = "verified"
	Invalid    Verification = "invalid"
)

type event string

const (
	evRestore      event = "restore"
	evVerified     event = "verified"
	evLogin        event = "login"
	evLoginOK      event = "login_succeeded"
	evLoginFailed  event = "login_failed"
	evLoginAborted event = "login_aborted"
	evLogout       event = "logout"

	evBegin   event = "begin"
	evConfirm event = "confirm"
	evReject  event = "reject"
	evReset   event = "reset"
)

var allStates = []State{StateUnauthenticated, StateInitializing, StateLoggingIn, StateAuthenticated}

func newLifecycle(log *slog.Logger) *statemachine.Machine[State, event] {
	return statemachine.New(StateUnauthenticated,
		statemachine.WithTransition(StateUnauthenticated, evRestore, StateInitializing),
		statemachine.WithTransitions(evVerified, StateAuthenticated, StateInitializing, StateAuthenticated, StateUnauthenticated),
		statemachine.WithTransitions(evLogin, StateLoggingIn, allStates...),
		// A forced logout may land while a login is in flight; the login still wins.
		statemachine.WithTransitions(evLoginOK, StateAuthenticated, StateLoggingIn, StateUnauthenticated),
		statemachine.WithTransitions(evLoginFailed, StateUnauthenticated, StateLoggingIn, StateUnauthenticated),
		// A rejected login leaves a previously established session in place.
		statemachine.WithTransition(StateLoggingIn, evLoginAborted, StateAuthenticated),
		statemachine.WithTransitions(evLogout, StateUnauthenticated, allStates...),
		statemachine.WithHook[State, event](func(ctx context.Context, t statemachine.Transition[State, event]) {
			log.DebugContext(ctx, "session state changed",
				logger.Component("session"),
				logger.Event(string(t.Event)),
				slog.String("from", string(t.From)),
				logger.State(string(t.To)),
			)
		}),
	)
}

var allVerifications = []Verification{Unverified, Verifying, Verified, Invalid}

func newVerification() *statemachine.Machine[Verification, event] {
	return statemachine.New(Unverified,
		statemachine.WithTransitions(evBegin, Verifying, allVerifications...),
		statemachine.WithTransitions(evConfirm, Verified, allVerifications...),
		statemachine.WithTransitions(evReject, Invalid, Verifying, Unverified),
		statemachine.WithTransitions(evReset, Unverified, allVerifications...),
	)
}
