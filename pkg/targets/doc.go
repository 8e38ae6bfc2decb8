// Package targets is the branch manager's view of marketing targets: the
// staff list with their assigned amounts, the branch allocation per product,
// and assigning product amounts to a staff member.
//
// The client carries no credentials of its own. Build it on the session's
// authorized client so the bearer token is attached and a 401 ends the session:
//
//	tc, _ := targets.New(baseURL, sess.HTTPClient(http.DefaultClient))
//	period, err := targets.PeriodOf(sess.User())
//	staff, err := tc.Assignments(ctx, period, "")
package targets
