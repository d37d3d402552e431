// Package genai is a minimal REST client for the generative image backend.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/lumina-ai/studio/internal/core/domain"
	"github.com/lumina-ai/studio/internal/core/ports"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	maxBody        = 32 << 20
)

var ErrEmptyResponse = errors.New("model returned no content")

// APIError is a non-2xx reply from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genai: status %d: %s", e.Status, e.Message)
}

// Config selects the endpoint and the model per feature.
type Config struct {
	APIKey        string
	BaseURL       string
	GenerateModel string
	EditModel     string
	AnalyzeModel  string
	Timeout       time.Duration
}

// Client implements ports.ImageModel.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

var _ ports.ImageModel = (*Client)(nil)

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type predictRequest struct {
	Instances  []map[string]string `json:"instances"`
	Parameters map[string]any      `json:"parameters"`
}

// Generate creates one image from prompt at the requested aspect ratio.
func (c *Client) Generate(ctx context.Context, prompt string, ratio domain.AspectRatio) (*domain.Image, error) {
	body := predictRequest{
		Instances: []map[string]string{{"prompt": prompt}},
		Parameters: map[string]any{
			"sampleCount":      1,
			"aspectRatio":      string(ratio),
			"outputMimeType":   "image/jpeg",
			"personGeneration": "allow_adult",
		},
	}
	res, err := c.call(ctx, c.cfg.GenerateModel, "predict", body)
	if err != nil {
		return nil, err
	}

	pred := res.Get("predictions.0")
	b64 := pred.Get("bytesBase64Encoded").String()
	if b64 == "" {
		return nil, ErrEmptyResponse
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("genai: decode image: %w", err)
	}
	mime := pred.Get("mimeType").String()
	if mime == "" {
		mime = "image/jpeg"
	}
	return &domain.Image{Data: data, MIMEType: mime}, nil
}

// Edit sends img with an instruction and returns the first image part.
func (c *Client) Edit(ctx context.Context, img domain.Image, prompt string) (*domain.Image, error) {
	body := generateContentRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MIMEType: img.MIMEType, Data: base64.StdEncoding.EncodeToString(img.Data)}},
			{Text: prompt},
		}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE"}},
	}
	res, err := c.call(ctx, c.cfg.EditModel, "generateContent", body)
	if err != nil {
		return nil, err
	}

	for _, p := range res.Get("candidates.0.content.parts").Array() {
		inline := p.Get("inlineData")
		if !inline.Exists() {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(inline.Get("data").String())
		if err != nil {
			return nil, fmt.Errorf("genai: decode image: %w", err)
		}
		if len(data) == 0 {
			continue
		}
		mime := inline.Get("mimeType").String()
		if mime == "" {
			mime = "image/png"
		}
		return &domain.Image{Data: data, MIMEType: mime}, nil
	}
	return nil, ErrEmptyResponse
}

// Analyze asks question about img and returns the concatenated text parts.
// An answer without text is returned as "".
func (c *Client) Analyze(ctx context.Context, img domain.Image, question string) (string, error) {
	body := generateContentRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MIMEType: img.MIMEType, Data: base64.StdEncoding.EncodeToString(img.Data)}},
			{Text: question},
		}}},
	}
	res, err := c.call(ctx, c.cfg.AnalyzeModel, "generateContent", body)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, t := range res.Get("candidates.0.content.parts.#.text").Array() {
		sb.WriteString(t.String())
	}
	return sb.String(), nil
}

func (c *Client) call(ctx context.Context, model, method string, payload any) (gjson.Result, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("genai: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:%s", strings.TrimRight(c.cfg.BaseURL, "/"), model, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("genai: %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("genai: read response: %w", err)
	}
	c.log.Debug().Str("model", model).Str("method", method).Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).Msg("model call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return gjson.Result{}, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("genai: malformed response body")
	}
	return gjson.ParseBytes(raw), nil
}
