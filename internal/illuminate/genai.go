package illuminate

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Rough blended cost per token; good enough for the running-cost display.
const costPerToken = 0.000002

// GenAIClient talks to the Gemini API.
type GenAIClient struct {
	client *genai.Client
}

// NewGenAIClient creates a client from an API key.
func NewGenAIClient(ctx context.Context, apiKey string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIClient{client: client}, nil
}

// Complete runs one text generation call with the resolved configuration.
func (c *GenAIClient) Complete(ctx context.Context, call Call) (*Completion, error) {
	cfg := &genai.GenerateContentConfig{}
	if call.Config.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*call.Config.Temperature))
	}
	if call.Config.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(call.Config.MaxTokens)
	}
	system := call.System
	if system == "" {
		system = call.Config.System
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, call.Config.Model, genai.Text(call.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("model returned an empty response")
	}

	var cost float64
	if resp.UsageMetadata != nil {
		cost = float64(resp.UsageMetadata.TotalTokenCount) * costPerToken
	}
	return &Completion{Text: text, Cost: cost}, nil
}

// GenerateImage produces one illustration for the prompt.
func (c *GenAIClient) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	resp, err := c.client.Models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("model returned no images")
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}
