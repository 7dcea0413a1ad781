package port

import "context"

// EmbeddingProvider abstracts the external embedding backend.
// Implementations target Ollama, OpenAI, or any compatible API; exactly one
// implementation is selected by configuration at startup, never per call.
type EmbeddingProvider interface {
	// ModelName returns the identifier of the embedding model being used.
	ModelName() string

	// Dimension returns the dimensionality of the output vectors. It must
	// match the vector column created at provisioning time.
	Dimension() int

	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// Implementations must return one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
