// Package broadcast is a small typed publish/subscribe bus for in-process events.
//
// A Bus[T] fans values out to its subscribers without ever blocking the
// publisher. Each Subscription has a bounded buffer; when it is full the
// value is dropped for that subscriber only. Subscriptions end when their
// context is cancelled, when Close is called on them, or when the bus closes.
//
//	bus := broadcast.New[interceptor.Unauthorized](8)
//	sub := bus.Subscribe(ctx)
//	go func() {
//		for ev := range sub.C() {
//			handle(ev)
//		}
//	}()
//	bus.Publish(ctx, interceptor.Unauthorized{Status: 401})
package broadcast
