package mockapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/targetdesk/pkg/identity"
	"github.com/dmitrymomot/targetdesk/pkg/mockapi"
	"github.com/dmitrymomot/targetdesk/pkg/targets"
)

func newServer(t *testing.T) (*mockapi.Server, *httptest.Server) {
	t.Helper()

	api := mockapi.New(mockapi.WithPasswordCost(bcrypt.MinCost))
	require.NoError(t, api.AddAccount("1001", "secret", identity.Profile{
		Type:        "bm",
		Name:        "Ana",
		BranchName:  "Bandung",
		TargetMonth: 3,
		TargetYear:  2025,
	}))
	api.SetBranch(targets.Branch{
		BranchID: 7, BranchName: "Bandung", Month: 3, Year: 2025,
		Products: []targets.BranchProduct{{ProductID: 1, ProductName: "KUR", TotalTarget: 1000, UnassignedAmount: 1000}},
	})
	api.SetStaff([]targets.Staff{
		{NIP: "2001", Name: "Budi"},
		{NIP: "2002", Name: "Citra"},
	})

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func call(t *testing.T, method, url, token, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServer_Login(t *testing.T) {
	t.Parallel()
	_, srv := newServer(t)

	tests := []struct {
		name    string
		body    string
		success bool
		message string
	}{
		{name: "valid", body: `{"nip":"1001","password":"secret"}`, success: true},
		{name: "wrong password", body: `{"nip":"1001","password":"nope"}`, message: "invalid credentials"},
		{name: "unknown nip", body: `{"nip":"9999","password":"secret"}`, message: "invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := call(t, http.MethodPost, srv.URL+"/auth/login", "", tt.body)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.success, out["success"])
			if tt.success {
				assert.NotEmpty(t, out["token"])
			} else {
				assert.Equal(t, tt.message, out["message"])
				assert.Nil(t, out["token"])
			}
		})
	}
}

func TestServer_ProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	api, srv := newServer(t)

	token, err := api.IssueToken("1001")
	require.NoError(t, err)

	status, _ := call(t, http.MethodGet, srv.URL+"/profile/summary", token, "")
	assert.Equal(t, http.StatusOK, status)

	for _, tok := range []string{"", "bogus"} {
		status, out := call(t, http.MethodGet, srv.URL+"/profile/summary", tok, "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, false, out["success"])
	}

	api.Revoke(token)
	status, _ = call(t, http.MethodGet, srv.URL+"/bm/branch-targets", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 1, api.Calls("/bm/branch-targets"))
}

func TestServer_Profile(t *testing.T) {
	t.Parallel()
	api, srv := newServer(t)

	token, err := api.IssueToken("1001")
	require.NoError(t, err)

	_, out := call(t, http.MethodGet, srv.URL+"/profile/summary", token, "")
	require.Equal(t, true, out["success"])
	data := out["data"].(map[string]any)
	assert.Equal(t, "1001", data["nip"])
	assert.Equal(t, "Ana", data["name"])

	require.NoError(t, api.UpdateProfile("1001", func(p *identity.Profile) { p.Name = "Ana Maria" }))
	_, out = call(t, http.MethodGet, srv.URL+"/profile/summary", token, "")
	assert.Equal(t, "Ana Maria", out["data"].(map[string]any)["name"])

	api.FailProfile(true, "")
	_, out = call(t, http.MethodGet, srv.URL+"/profile/summary", token, "")
	assert.Equal(t, false, out["success"])
	assert.NotContains(t, out, "message")

	api.FailProfile(true, "profile locked")
	_, out = call(t, http.MethodGet, srv.URL+"/profile/summary", token, "")
	assert.Equal(t, "profile locked", out["message"])

	assert.ErrorIs(t, api.UpdateProfile("nobody", func(*identity.Profile) {}), mockapi.ErrUnknownAccount)
}

func TestServer_AddAccountDuplicate(t *testing.T) {
	t.Parallel()
	api, _ := newServer(t)

	assert.ErrorIs(t, api.AddAccount("1001", "x", identity.Profile{}), mockapi.ErrDuplicate)
	_, err := api.IssueToken("nobody")
	assert.ErrorIs(t, err, mockapi.ErrUnknownAccount)
}

func TestServer_Assign(t *testing.T) {
	t.Parallel()
	api, srv := newServer(t)

	token, err := api.IssueToken("1001")
	require.NoError(t, err)
	url := srv.URL + "/bm/monitoring/assignment/"

	status, out := call(t, http.MethodPost, url+"2001", token, `{"bulan":3,"target":[{"product_id":1,"amount":0}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, out["errors"], "amount")

	status, out = call(t, http.MethodPost, url+"9999", token, `{"bulan":3,"target":[{"product_id":1,"amount":10}]}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, out["error"])

	status, out = call(t, http.MethodPost, url+"2001", token, `{"bulan":3,"target":[{"product_id":1,"amount":400}]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["success"])

	st, ok := api.Staff("2001")
	require.True(t, ok)
	assert.True(t, st.HasTarget)
	assert.InDelta(t, 400, st.TotalTarget, 0.001)
	require.Len(t, st.TargetDetails, 1)
	assert.Equal(t, "KUR", st.TargetDetails[0].ProductName)

	// Reassigning replaces the previous amount in the branch totals.
	_, _ = call(t, http.MethodPost, url+"2001", token, `{"bulan":3,"target":[{"product_id":1,"amount":250}]}`)
	_, out = call(t, http.MethodGet, srv.URL+"/bm/branch-targets", token, "")
	product := out["data"].(map[string]any)["products"].([]any)[0].(map[string]any)
	assert.InDelta(t, 250, product["assigned_amount"], 0.001)
	assert.InDelta(t, 750, product["unassigned_amount"], 0.001)
}

func TestServer_Assignments(t *testing.T) {
	t.Parallel()
	api, srv := newServer(t)

	token, err := api.IssueToken("1001")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "all", query: "?month=3&year=2025", want: 2},
		{name: "by name", query: "?month=3&year=2025&search=cit", want: 1},
		{name: "by nip", query: "?month=3&year=2025&search=2001", want: 1},
		{name: "no match", query: "?month=3&year=2025&search=zzz", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := call(t, http.MethodGet, srv.URL+"/bm/monitoring/assignment"+tt.query, token, "")
			require.Equal(t, http.StatusOK, status)
			assert.Len(t, out["data"], tt.want)
		})
	}

	status, _ := call(t, http.MethodGet, srv.URL+"/bm/monitoring/assignment", token, "")
	assert.Equal(t, http.StatusBadRequest, status)
}
