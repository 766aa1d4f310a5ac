package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sjperalta/smartdebt-api/pkg/logger"
	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through google.golang.org/genai
type GeminiClient struct {
	client *genai.Client
	model  string
}

var _ TextGenerator = (*GeminiClient)(nil)

// NewGeminiClient creates a client for the Gemini Developer API
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	logger.Info("Gemini client ready", "model", model)
	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends one single-turn request
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
