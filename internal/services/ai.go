package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/huangang/sprintdesk/backend/internal/config"
	"github.com/huangang/sprintdesk/backend/pkg/logger"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// descriptionPrompt is the template used when a task arrives without a
// description.
const descriptionPrompt = "generate a description on how to do the %s task in our project in points, limited to 1000 characters."

// DescriptionPrompt renders the default generation prompt for a task title.
func DescriptionPrompt(title string) string {
	return fmt.Sprintf(descriptionPrompt, title)
}

// Generator produces text for a prompt. Failures are returned as-is; callers
// decide how they surface.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AIService calls the configured text-generation provider. Every call is
// bounded by the configured timeout so a slow upstream cannot stall requests.
type AIService struct {
	cfg *config.LLMConfig
}

func NewAIService(cfg *config.LLMConfig) *AIService {
	return &AIService{cfg: cfg}
}

func (s *AIService) timeout() time.Duration {
	if s.cfg.TimeoutSec > 0 {
		return time.Duration(s.cfg.TimeoutSec) * time.Second
	}
	return 30 * time.Second
}

// Generate sends the prompt to the configured provider and returns the
// generated text. An empty upstream response is treated as a failure.
func (s *AIService) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	logger.Infof("[AI] provider=%s model=%s prompt length=%d chars", s.cfg.Provider, s.cfg.Model, len(prompt))

	var (
		text string
		err  error
	)
	switch s.cfg.Provider {
	case "anthropic":
		text, err = s.callAnthropic(ctx, prompt)
	case "ollama":
		text, err = s.callOllama(ctx, prompt)
	case "gemini":
		text, err = s.callGemini(ctx, prompt)
	default:
		// openai and OpenAI-compatible endpoints
		text, err = s.callOpenAI(ctx, prompt)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from %s", s.cfg.Provider)
	}
	return text, nil
}

func (s *AIService) callOpenAI(ctx context.Context, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(s.cfg.APIKey)
	if s.cfg.BaseURL != "" {
		clientConfig.BaseURL = s.cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	temperature := float32(0.3)
	if s.cfg.Temperature > 0 {
		temperature = float32(s.cfg.Temperature)
	}

	model := s.cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *AIService) callAnthropic(ctx context.Context, prompt string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(s.cfg.APIKey),
	)

	maxTokens := int64(s.cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	model := s.cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return content.String(), nil
}

func (s *AIService) callOllama(ctx context.Context, prompt string) (string, error) {
	baseURL := s.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := s.cfg.Model
	if model == "" {
		model = "llama3"
	}

	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Options: map[string]interface{}{
			"temperature": s.cfg.Temperature,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}
	return content.String(), nil
}

func (s *AIService) callGemini(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: s.cfg.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini client error: %w", err)
	}

	model := s.cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return resp.Text(), nil
}
