package bridge

import (
	"errors"
	"fmt"
)

// TransportError means the request never produced an HTTP response:
// unreachable host, DNS failure, timeout or cancellation.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bridge: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a response outside the 2xx range
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bridge: unexpected status %d: %s", e.Code, e.Body)
}

// DecodeError is a 2xx response whose body is not what the endpoint promises.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bridge: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kind names the failure class of err for logging: "transport", "status",
// "decode" or "other". A nil error is "".
func Kind(err error) string {
	var (
		transportErr *TransportError
		statusErr    *StatusError
		decodeErr    *DecodeError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &statusErr):
		return "status"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "other"
	}
}
