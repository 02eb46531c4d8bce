package hub

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Callers branch on these to print the right
// remediation message.
var (
	ErrNotFound     = errors.New("hub: not found")
	ErrUnauthorized = errors.New("hub: unauthorized")
)

// APIError represents a non-2xx response from the registry.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return "hub: api error <nil>"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" && len(e.Body) > 0 {
		msg = strings.TrimSpace(string(e.Body))
	}
	if msg != "" {
		return fmt.Sprintf("hub: api error (%s): %s", e.Status, msg)
	}
	return fmt.Sprintf("hub: api error (%s)", e.Status)
}

// Unwrap maps status codes onto the sentinel kinds.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	switch e.StatusCode {
	case 404:
		return ErrNotFound
	case 401, 403:
		return ErrUnauthorized
	default:
		return nil
	}
}
