package interceptor

import "net/http"

type through struct {
	client *http.Client
}

// Through returns a RoundTripper that sends every request via client's
// current Transport, looked up per request. Layers built on top of it see
// Install and Uninstall take effect immediately.
func Through(client *http.Client) http.RoundTripper {
	if client == nil {
		client = http.DefaultClient
	}
	return &through{client: client}
}

func (t *through) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := t.client.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}
