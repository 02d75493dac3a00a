package embedding

import "context"

// Result carries the vector together with the model identifier that
// produced it. Retrieval compares a query vector only against stored
// vectors from the same model; the identifier is what makes that check
// possible.
type Result struct {
	Vector []float32
	Model  string
}

// Provider defines the interface for generating text embeddings.
// Implementations must be deterministic for a fixed model identifier.
type Provider interface {
	Embed(ctx context.Context, text string) (*Result, error)

	// ModelId returns the identifier of the model this provider embeds with.
	ModelId() string
}
