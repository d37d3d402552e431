package ports

import (
	"context"

	"github.com/lumina-ai/studio/internal/core/domain"
)

// ImageModel is the external generative backend. Every call is single-shot and
// either yields a payload or an error.
type ImageModel interface {
	Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.Image, error)
	Edit(ctx context.Context, img domain.Image, prompt string) (*domain.Image, error)
	Analyze(ctx context.Context, img domain.Image, question string) (string, error)
}

// StudioService runs paid studio actions on behalf of a user.
type StudioService interface {
	Generate(ctx context.Context, userID, prompt string, ratio domain.AspectRatio) (*domain.Image, error)
	Edit(ctx context.Context, userID string, img domain.Image, prompt string) (*domain.Image, error)
	Analyze(ctx context.Context, userID string, img domain.Image, question string) (string, error)
}
