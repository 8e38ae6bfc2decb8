// Package requestid correlates requests between the client and the dashboard API.
//
// On the client side NewTransport stamps every outbound request with an
// X-Request-ID header, taken from the context (WithContext) or generated as a
// UUID. On the server side (the fake backend) Middleware accepts or generates
// the id and stores it in the request context. LoggerExtractor plugs the id
// into pkg/logger so both ends log the same value.
//
//	client := &http.Client{Transport: requestid.NewTransport(nil)}
//	ctx := requestid.WithContext(ctx, requestid.New())
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
//	resp, err := client.Do(req)
package requestid
