package services

import (
	"context"
	"errors"
	"fmt"

	appconfig "trade-signals/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// openaiClient defines the interface for OpenAI API calls (for testing)
type openaiClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// openaiClientWrapper wraps the openai.Client to implement our interface
type openaiClientWrapper struct {
	client openai.Client
}

func (w *openaiClientWrapper) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return w.client.Chat.Completions.New(ctx, params)
}

// OpenAIService generates headline commentary through an OpenAI compatible chat endpoint
type OpenAIService struct {
	client      openaiClient
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAIService creates a new OpenAIService instance
func NewOpenAIService(cfg *appconfig.Config) (*OpenAIService, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAI.APIKey),
		option.WithRequestTimeout(cfg.UpstreamTimeout()),
		// retries are governed by the call budget, not the SDK
		option.WithMaxRetries(0),
	}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}

	client := openai.NewClient(opts...)

	return &OpenAIService{
		client:      &openaiClientWrapper{client: client},
		model:       cfg.OpenAI.Model,
		maxTokens:   cfg.OpenAI.MaxTokens,
		temperature: cfg.OpenAI.Temperature,
	}, nil
}

// newOpenAIServiceWithClient creates an OpenAIService with a custom client (for testing)
func newOpenAIServiceWithClient(client openaiClient, model string, maxTokens int) *OpenAIService {
	return &OpenAIService{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: 0.7,
	}
}

// GenerateCommentary asks the model for one interpretation per headline
func (s *OpenAIService) GenerateCommentary(ctx context.Context, headlines []string) (string, error) {
	return s.InvokeWithPrompt(ctx, commentarySystemPrompt, BuildCommentaryPrompt(headlines))
}

// InvokeWithPrompt sends a prompt to the model and returns the response text
func (s *OpenAIService) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	done := observeCall(BreakerOpenAI, "chat_completion")

	result, err := WithCircuitBreaker(ctx, BreakerOpenAI, func() (string, error) {
		params := openai.ChatCompletionNewParams{
			Model:       shared.ChatModel(s.model),
			MaxTokens:   openai.Int(int64(s.maxTokens)),
			Temperature: openai.Float(s.temperature),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(userPrompt),
			},
		}

		completion, err := s.client.CreateChatCompletion(ctx, params)
		if err != nil {
			return "", classifyOpenAIError(err)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("empty response from OpenAI")
		}

		return completion.Choices[0].Message.Content, nil
	})

	done(err)
	return result, err
}

// classifyOpenAIError surfaces throttling answers as StatusError so callers can release budget
func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("failed to invoke OpenAI: %w", &StatusError{
			Service:    BreakerOpenAI,
			StatusCode: apiErr.StatusCode,
			Body:       apiErr.Message,
		})
	}
	return fmt.Errorf("failed to invoke OpenAI: %w", err)
}
