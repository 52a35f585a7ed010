package transport

import "net/http"

// Decorator modifies an outgoing request before it is sent.
type Decorator func(req *http.Request)

// QueryParam sets a query parameter on every request, e.g. the Geonames
// username.
func QueryParam(name, value string) Decorator {
	return func(req *http.Request) {
		if req.URL == nil {
			return
		}
		query := req.URL.Query()
		query.Set(name, value)
		req.URL.RawQuery = query.Encode()
	}
}

// Header sets a header on every request.
func Header(name, value string) Decorator {
	return func(req *http.Request) {
		req.Header.Set(name, value)
	}
}
