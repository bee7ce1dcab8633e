package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// JSONRequest is one schema-constrained generation call.
type JSONRequest struct {
	Prompt      string
	Schema      *genai.Schema
	Temperature float32
}

// Model is the part of the provider the generator depends on.
type Model interface {
	GenerateJSON(ctx context.Context, req JSONRequest) (string, error)
}

// GeminiClient talks to the Gemini API through the official SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds a client for the given model. baseURL is optional and only
// used to point the SDK at a proxy or test server.
func NewGeminiClient(ctx context.Context, apiKey, baseURL, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Name returns the provider and model, e.g. "gemini:gemini-2.5-flash".
func (c *GeminiClient) Name() string {
	return "gemini:" + c.model
}

// GenerateJSON sends the prompt with the response schema and returns the raw text.
func (c *GeminiClient) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini returned no response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
