// Package genai wraps the generative backend behind the one-method shape the
// message store expects: prompt in, text out, fallible. The concrete backend
// is an OpenAI chat model reached through langchaingo; swapping providers
// means swapping the constructor, nothing upstream changes.
package genai

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// systemPrompt frames every generation request.
const systemPrompt = "You are a friendly colleague writing birthday messages."

// Defaults matching the upstream generation settings.
const (
	defaultModel     = "gpt-4"
	defaultMaxTokens = 200
	temperature      = 0.8
)

// OpenAIGenerator generates birthday messages with an OpenAI chat model.
type OpenAIGenerator struct {
	llm       llms.Model
	maxTokens int
}

// NewOpenAI constructs a generator for the given API key and model. An empty
// model selects the default; maxTokens <= 0 selects the default budget.
func NewOpenAI(apiKey, model string, maxTokens int) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &OpenAIGenerator{llm: llm, maxTokens: maxTokens}, nil
}

// Generate sends prompt to the model and returns the trimmed completion text.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
