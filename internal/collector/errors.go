package collector

import "fmt"

// TransportError reports a request that never produced an HTTP response.
type TransportError struct {
	Network string
	Pool    string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s/%s: transport: %v", e.Network, e.Pool, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	Network    string
	Pool       string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch %s/%s: status %d, body: %s", e.Network, e.Pool, e.StatusCode, e.Body)
}

// MalformedResponseError reports a response body that does not carry a usable candle list.
type MalformedResponseError struct {
	Network string
	Pool    string
	Reason  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("fetch %s/%s: malformed response: %s", e.Network, e.Pool, e.Reason)
}
