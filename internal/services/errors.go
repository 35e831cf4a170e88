package services

import (
	"errors"
	"fmt"
)

// Typed errors for the checkout domain. They let the transport layer map
// failures to HTTP statuses without inspecting gateway internals.
var (
	// ErrMissingFields indicates the caller omitted required checkout fields.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidArgument indicates a malformed identifier, e.g. an empty session ID.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrGatewayRejected indicates ArifPay answered with a non-success status.
	ErrGatewayRejected = errors.New("gateway rejected request")
	// ErrGatewayUnavailable indicates ArifPay could not be reached at all.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
)

// GatewayError carries the upstream response body alongside the sentinel so
// callers can attach the gateway's own diagnostics to their error envelope.
type GatewayError struct {
	Err        error  // ErrGatewayRejected or ErrGatewayUnavailable
	StatusCode int    // zero when the request never reached the gateway
	Body       string // raw upstream body, or the transport error message
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%v: status %d: %s", e.Err, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Body)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// UpstreamDetails extracts the gateway-supplied detail from err, falling back
// to the error message itself.
func UpstreamDetails(err error) string {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Body
	}
	return err.Error()
}
