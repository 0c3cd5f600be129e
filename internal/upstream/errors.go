package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNoSession means the session store holds no credential pair. On a
	// protected view this triggers a redirect to the login view.
	ErrNoSession = errors.New("no active session")

	// ErrTimeout marks a request that exceeded the configured deadline.
	ErrTimeout = errors.New("request timed out")
)

// RejectedError carries the upstream-provided detail message from a non-2xx
// response. Op is "login", "scan" or "dashboard".
type RejectedError struct {
	Op     string
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected (status %d): %s", e.Op, e.Status, e.Detail)
}

// errorDetail extracts the {"detail": "..."} body all three upstream
// services use for failures; a malformed body degrades to the fallback.
func errorDetail(body []byte, fallback string) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return fallback
}

// wrapTransportErr maps network-level failures onto the error taxonomy so
// they reach the notification path instead of propagating raw.
func wrapTransportErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s request failed: %w", op, err)
}
