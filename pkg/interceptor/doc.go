// Package interceptor watches every response of a shared *http.Client for
// HTTP 401 and reports it as an Unauthorized event.
//
// A Registration wraps the client's Transport on Install and puts the
// original back on Uninstall. The wrapper never alters requests or
// responses: it delegates to the original transport, looks at the status
// code and, for 401, publishes an event to its Publisher before handing the
// response back untouched. The session layer subscribes to those events
// and tears the session down.
//
//	bus := broadcast.New[interceptor.Unauthorized](8)
//	reg := interceptor.New(http.DefaultClient, bus)
//	if err := reg.Install(); err != nil { ... }
//	defer reg.Uninstall()
//
// Install refuses to wrap a client twice (ErrAlreadyInstalled).
package interceptor
