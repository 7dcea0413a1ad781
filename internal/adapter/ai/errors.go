package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ProviderError describes a failure reported by an embedding provider.
// Transient failures (cold-start, rate limit, timeout) are subject to the
// pipeline's one-retry policy; permanent failures (bad credentials, bad
// request) abort the run immediately.
type ProviderError struct {
	Provider  string
	Status    int // HTTP status, 0 when the request never completed
	Transient bool
	Message   string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s embed error (%d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s embed error: %s", e.Provider, e.Message)
}

// transientStatus classifies an HTTP status from a provider.
// 429 and 5xx cover rate limits and model cold-starts.
func transientStatus(status int) bool {
	return status == 429 || status >= 500
}

// IsTransient reports whether err is worth a single retry. Timeouts and
// connection-level failures count as transient.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return false
}
