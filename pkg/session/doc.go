// Package session manages the client-side session of the dashboard: who is
// logged in, with which token, and what happens when the server stops
// accepting that token.
//
// # Components
//
// Manager holds the session in memory and mirrors it to a credentials.Store.
// It logs in through an Authenticator, verifies tokens through a
// ProfileFetcher (identity.Client is both) and sends the user to LoginRoute
// through a Navigator whenever the session is torn down.
//
// Provider ties a Manager to an interceptor.Registration. Mount installs the
// interceptor on the shared HTTP client, subscribes the manager to its
// unauthorized events, runs Initialize and returns a context carrying the
// Consumer. Any 401 seen on the shared client from then on logs the user out.
//
//	events := broadcast.New[interceptor.Unauthorized](8)
//	reg := interceptor.New(http.DefaultClient, events)
//	api, _ := identity.New(baseURL)
//	mgr := session.New(store, api, api, session.WithNavigator(nav))
//
//	ctx, err := session.NewProvider(mgr, reg, events).Mount(ctx)
//	...
//	sess := session.Use(ctx) // panics with ErrProviderMissing outside a provider
//	err = sess.Login(ctx, nip, password)
//
// # States
//
// The lifecycle moves between StateUnauthenticated, StateInitializing,
// StateLoggingIn and StateAuthenticated. Restored sessions additionally
// report their Verification: Unverified, then Verifying while the stored
// profile is on screen, then Verified or Invalid once the server answered.
//
// # Errors
//
// Login returns errors matching ErrAuthenticationFailed or
// ErrProfileUnavailable and records their display message in Err().
// Initialize and RefreshProfile failures never produce a message: they end
// logged out. A login whose profile fetch fails removes the token it had
// already stored.
package session
