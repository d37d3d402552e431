package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lumina-ai/studio/internal/core/domain"
)

type stubStudio struct {
	err      error
	ratio    domain.AspectRatio
	upload   domain.Image
	question string
}

func (s *stubStudio) Generate(_ context.Context, _ string, _ string, ratio domain.AspectRatio) (*domain.Image, error) {
	s.ratio = ratio
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Image{Data: []byte("img"), MIMEType: "image/jpeg"}, nil
}

func (s *stubStudio) Edit(_ context.Context, _ string, img domain.Image, _ string) (*domain.Image, error) {
	s.upload = img
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Image{Data: []byte("edited"), MIMEType: "image/png"}, nil
}

func (s *stubStudio) Analyze(_ context.Context, _ string, img domain.Image, question string) (string, error) {
	s.upload = img
	s.question = question
	if s.err != nil {
		return "", s.err
	}
	return "a cat", nil
}

func newStudioFixture() (*StudioHandler, *stubStudio) {
	studio := &stubStudio{}
	users := &stubLedger{users: map[string]*domain.User{"u1": {ID: "u1", Coins: 4}}}
	return NewStudioHandler(studio, users), studio
}

func TestStudioHandler_Generate(t *testing.T) {
	e := newTestEcho()
	h, studio := newStudioFixture()

	c, rec := newJSONContext(e, http.MethodPost, "/studio/generate", `{"prompt":"a cat","aspect_ratio":"16:9"}`)
	asUser(c, "u1", domain.RoleUser)
	if err := h.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp imageResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Image != base64.StdEncoding.EncodeToString([]byte("img")) || resp.Coins != 4 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if studio.ratio != domain.AspectWidescreen {
		t.Fatalf("unexpected ratio %q", studio.ratio)
	}
}

func TestStudioHandler_Generate_BadRatio(t *testing.T) {
	e := newTestEcho()
	h, _ := newStudioFixture()

	c, rec := newJSONContext(e, http.MethodPost, "/studio/generate", `{"prompt":"a cat","aspect_ratio":"2:1"}`)
	asUser(c, "u1", domain.RoleUser)
	if err := h.Generate(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestStudioHandler_Generate_ServiceErrors(t *testing.T) {
	e := newTestEcho()
	h, studio := newStudioFixture()

	for _, want := range []error{
		domain.ErrInsufficientBalance,
		fmt.Errorf("generate: %w: %w", domain.ErrExternalOperationFailed, errors.New("quota")),
	} {
		studio.err = want
		c, _ := newJSONContext(e, http.MethodPost, "/studio/generate", `{"prompt":"a cat"}`)
		asUser(c, "u1", domain.RoleUser)
		if err := h.Generate(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestStudioHandler_Edit(t *testing.T) {
	e := newTestEcho()
	h, studio := newStudioFixture()
	src := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})

	c, rec := newJSONContext(e, http.MethodPost, "/studio/edit", `{"image":"`+src+`","mime_type":"image/jpeg","prompt":"retro"}`)
	asUser(c, "u1", domain.RoleUser)
	if err := h.Edit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(studio.upload.Data) != 3 || studio.upload.MIMEType != "image/jpeg" {
		t.Fatalf("upload not decoded: %+v", studio.upload)
	}
	var resp imageResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.MIMEType != "image/png" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestStudioHandler_Edit_NotBase64(t *testing.T) {
	e := newTestEcho()
	h, _ := newStudioFixture()

	c, rec := newJSONContext(e, http.MethodPost, "/studio/edit", `{"image":"%%%","prompt":"retro"}`)
	asUser(c, "u1", domain.RoleUser)
	if err := h.Edit(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestStudioHandler_Analyze(t *testing.T) {
	e := newTestEcho()
	h, studio := newStudioFixture()
	src := base64.StdEncoding.EncodeToString([]byte("jpeg"))

	c, rec := newJSONContext(e, http.MethodPost, "/studio/analyze", `{"image":"`+src+`"}`)
	asUser(c, "u1", domain.RoleUser)
	if err := h.Analyze(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp analysisResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Text != "a cat" || resp.Coins != 4 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if studio.question != "" {
		t.Fatalf("question defaulting belongs to the service, got %q", studio.question)
	}
}
