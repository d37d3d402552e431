package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

const (
	defaultQuestion   = "Describe this image in detail."
	noAnalysisText    = "No analysis available."
	defaultUploadMIME = "image/jpeg"
)

// Prices is the coin cost of each studio feature.
type Prices struct {
	Generate int64
	Edit     int64
	Analyze  int64
}

// StudioService wraps each image-model call in the paid-operation contract.
type StudioService struct {
	runner *PaidRunner
	model  ports.ImageModel
	prices Prices
	log    zerolog.Logger
}

var _ ports.StudioService = (*StudioService)(nil)

func NewStudioService(runner *PaidRunner, model ports.ImageModel, prices Prices, log zerolog.Logger) *StudioService {
	return &StudioService{runner: runner, model: model, prices: prices, log: log}
}

// Prices returns the configured price list.
func (s *StudioService) Prices() Prices { return s.prices }

// Generate creates an image from a text prompt.
func (s *StudioService) Generate(ctx context.Context, userID, prompt string, ratio domain.AspectRatio) (*domain.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}
	if ratio == "" {
		ratio = domain.AspectSquare
	}
	if !ratio.Valid() {
		return nil, fmt.Errorf("%w: unsupported aspect ratio %q", domain.ErrInvalidInput, ratio)
	}

	return RunPaid(ctx, s.runner, domain.FeatureGenerate, userID, s.prices.Generate, func(ctx context.Context) (*domain.Image, error) {
		return s.model.Generate(ctx, prompt, ratio)
	})
}

// Edit applies a natural-language instruction to an uploaded image.
func (s *StudioService) Edit(ctx context.Context, userID string, img domain.Image, prompt string) (*domain.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}
	if img.MIMEType == "" {
		img.MIMEType = defaultUploadMIME
	}

	return RunPaid(ctx, s.runner, domain.FeatureEdit, userID, s.prices.Edit, func(ctx context.Context) (*domain.Image, error) {
		return s.model.Edit(ctx, img, prompt)
	})
}

// Analyze answers a question about an uploaded image.
func (s *StudioService) Analyze(ctx context.Context, userID string, img domain.Image, question string) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		question = defaultQuestion
	}
	if img.MIMEType == "" {
		img.MIMEType = defaultUploadMIME
	}

	text, err := RunPaid(ctx, s.runner, domain.FeatureAnalyze, userID, s.prices.Analyze, func(ctx context.Context) (string, error) {
		return s.model.Analyze(ctx, img, question)
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return noAnalysisText, nil
	}
	return text, nil
}
