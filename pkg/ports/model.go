package ports

import (
	"context"

	"github.com/aretw0/skury/pkg/domain"
)

// Model is the remote generative model.
type Model interface {
	// Generate returns the trimmed text of the first candidate.
	Generate(ctx context.Context, prompt domain.Prompt) (string, error)
}
