// Package gemini calls the Gemini text-generation API through the genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"
)

var (
	// ErrNoCandidates indicates a response without any candidate to read text from.
	ErrNoCandidates = errors.New("text service returned no candidates")
	// ErrTransport wraps failures reaching the service or decoding its reply.
	ErrTransport = errors.New("text service request failed")
)

// Generator produces free text for a single prompt.
type Generator interface {
	// Generate returns the first text part of the first candidate. A
	// candidate without text yields an empty string.
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Client is a Generator backed by the Gemini API.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// New creates a Client. The API key and endpoint come only from cfg.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Client, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.TimeoutDuration()},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client: client,
		model:  cfg.Model,
		logger: logger.With("system", "gemini"),
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("generating content", "model", c.model, "prompt_length", len(prompt))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		c.logger.Error("generate content failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	return firstText(resp)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", ErrNoCandidates
	}

	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return "", nil
	}
	return content.Parts[0].Text, nil
}
