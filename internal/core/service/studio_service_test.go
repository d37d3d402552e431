package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lumina-ai/studio/internal/core/domain"
)

type stubModel struct {
	calls    int
	err      error
	text     string
	ratio    domain.AspectRatio
	question string
	mime     string
}

func (m *stubModel) Generate(_ context.Context, _ string, ratio domain.AspectRatio) (*domain.Image, error) {
	m.calls++
	m.ratio = ratio
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Image{Data: []byte("png"), MIMEType: "image/png"}, nil
}

func (m *stubModel) Edit(_ context.Context, img domain.Image, _ string) (*domain.Image, error) {
	m.calls++
	m.mime = img.MIMEType
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Image{Data: []byte("edited"), MIMEType: "image/png"}, nil
}

func (m *stubModel) Analyze(_ context.Context, _ domain.Image, question string) (string, error) {
	m.calls++
	m.question = question
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func newTestStudio(t *testing.T, coins int64, model *stubModel) (*StudioService, *LedgerService) {
	t.Helper()
	runner, ledger, _ := newTestRunner(t, coins)
	return NewStudioService(runner, model, Prices{Generate: 1, Edit: 1, Analyze: 1}, zerolog.Nop()), ledger
}

var upload = domain.Image{Data: []byte{0xff, 0xd8}}

func TestStudio_Generate_NoCoins(t *testing.T) {
	model := &stubModel{}
	studio, ledger := newTestStudio(t, 0, model)

	_, err := studio.Generate(context.Background(), "u1", "a cat", domain.AspectSquare)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("model must not be called, got %d calls", model.calls)
	}
	if got := balance(t, ledger, "u1"); got != 0 {
		t.Fatalf("balance changed: %d", got)
	}
}

func TestStudio_Generate_Success(t *testing.T) {
	model := &stubModel{}
	studio, ledger := newTestStudio(t, 5, model)

	img, err := studio.Generate(context.Background(), "u1", "a cat", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(img.Data) != "png" {
		t.Fatalf("unexpected image %q", img.Data)
	}
	if model.ratio != domain.AspectSquare {
		t.Fatalf("expected default ratio, got %q", model.ratio)
	}
	if got := balance(t, ledger, "u1"); got != 4 {
		t.Fatalf("expected 4 coins, got %d", got)
	}
}

func TestStudio_Generate_FailureRefunds(t *testing.T) {
	model := &stubModel{err: errors.New("quota")}
	studio, ledger := newTestStudio(t, 5, model)

	_, err := studio.Generate(context.Background(), "u1", "a cat", domain.AspectWidescreen)
	if !errors.Is(err, domain.ErrExternalOperationFailed) {
		t.Fatalf("expected ErrExternalOperationFailed, got %v", err)
	}
	if got := balance(t, ledger, "u1"); got != 5 {
		t.Fatalf("expected refund to 5, got %d", got)
	}
}

func TestStudio_Generate_Validation(t *testing.T) {
	model := &stubModel{}
	studio, ledger := newTestStudio(t, 5, model)

	if _, err := studio.Generate(context.Background(), "u1", "  ", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty prompt, got %v", err)
	}
	if _, err := studio.Generate(context.Background(), "u1", "cat", "2:1"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad ratio, got %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("model must not be called")
	}
	if got := balance(t, ledger, "u1"); got != 5 {
		t.Fatalf("validation failures must not charge, got %d", got)
	}
}

func TestStudio_Edit(t *testing.T) {
	model := &stubModel{}
	studio, ledger := newTestStudio(t, 2, model)

	if _, err := studio.Edit(context.Background(), "u1", domain.Image{}, "retro"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without an image, got %v", err)
	}

	img, err := studio.Edit(context.Background(), "u1", upload, "add a retro filter")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if string(img.Data) != "edited" {
		t.Fatalf("unexpected image %q", img.Data)
	}
	if model.mime != "image/jpeg" {
		t.Fatalf("expected default mime type, got %q", model.mime)
	}
	if got := balance(t, ledger, "u1"); got != 1 {
		t.Fatalf("expected 1 coin, got %d", got)
	}
}

func TestStudio_Analyze(t *testing.T) {
	model := &stubModel{text: "A cat on a sofa."}
	studio, ledger := newTestStudio(t, 3, model)

	text, err := studio.Analyze(context.Background(), "u1", upload, "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if text != "A cat on a sofa." {
		t.Fatalf("unexpected text %q", text)
	}
	if model.question != defaultQuestion {
		t.Fatalf("expected default question, got %q", model.question)
	}

	model.text = ""
	text, err = studio.Analyze(context.Background(), "u1", upload, "What is this?")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if text != noAnalysisText {
		t.Fatalf("expected placeholder text, got %q", text)
	}
	if got := balance(t, ledger, "u1"); got != 1 {
		t.Fatalf("expected 1 coin, got %d", got)
	}
}
