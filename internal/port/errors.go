package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrEventNotFound   = errors.New("event not found")
	ErrInsightNotFound = errors.New("insight not found")
	ErrEmbeddingShape  = errors.New("provider returned wrong embedding count")
	ErrUnknownProvider = errors.New("unknown embedding provider")
)
