package requestid

import "net/http"

type transport struct {
	base http.RoundTripper
}

// NewTransport returns a RoundTripper that tags outbound requests with an
// X-Request-ID header: the id stored in the request context if any, a new
// one otherwise. Requests that already carry the header are left alone.
// A nil base uses http.DefaultTransport.
func NewTransport(base http.RoundTripper) http.RoundTripper {
	return &transport{base: base}
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	if req.Header.Get(Header) != "" {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	Stamp(out)
	return base.RoundTrip(out)
}

// Stamp sets the X-Request-ID header on a request the caller owns, unless
// it is already present. The id comes from the request context when valid.
func Stamp(req *http.Request) {
	if req.Header.Get(Header) != "" {
		return
	}
	id := FromContext(req.Context())
	if !Valid(id) {
		id = New()
	}
	req.Header.Set(Header, id)
}
