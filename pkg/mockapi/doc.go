// Package mockapi is an in-memory implementation of the dashboard API used
// by tests and by cmd/mockapi for local development.
//
// It serves POST /auth/login, GET /profile/summary, GET /bm/branch-targets,
// GET /bm/monitoring/assignment and POST /bm/monitoring/assignment/{nip}.
// Every route except login requires a bearer token issued by the server and
// answers 401 otherwise. Tests steer it with Revoke, FailProfile and
// UpdateProfile.
//
//	api := mockapi.New(mockapi.WithPasswordCost(bcrypt.MinCost))
//	_ = api.AddAccount("1234567", "secret", identity.Profile{Name: "Ana"})
//	srv := httptest.NewServer(api)
package mockapi
