package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const anthropicVersion = "bedrock-2023-05-31"

// bedrockClient is the subset of the Bedrock runtime client we use (for testing)
type bedrockClient interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockService generates headline commentary with Claude models on AWS Bedrock
type BedrockService struct {
	client    bedrockClient
	model     string
	maxTokens int
}

// ClaudeRequest represents the request format for Claude models via Bedrock
type ClaudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []ClaudeMessage `json:"messages"`
	Temperature      float64         `json:"temperature,omitempty"`
}

// ClaudeMessage represents a message in the Claude conversation
type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClaudeResponse represents the response from Claude models
type ClaudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewBedrockService creates a new BedrockService instance
func NewBedrockService(ctx context.Context, region, modelID string, maxTokens int) (*BedrockService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return newBedrockServiceWithClient(bedrockruntime.NewFromConfig(cfg), modelID, maxTokens), nil
}

// newBedrockServiceWithClient creates a BedrockService with a custom client (for testing)
func newBedrockServiceWithClient(client bedrockClient, modelID string, maxTokens int) *BedrockService {
	if maxTokens <= 0 {
		maxTokens = 600
	}
	return &BedrockService{client: client, model: modelID, maxTokens: maxTokens}
}

// GenerateCommentary asks the model for one interpretation per headline
func (s *BedrockService) GenerateCommentary(ctx context.Context, headlines []string) (string, error) {
	done := observeCall(BreakerBedrock, "invoke_model")

	text, err := WithCircuitBreaker(ctx, BreakerBedrock, func() (string, error) {
		reqBody, err := json.Marshal(ClaudeRequest{
			AnthropicVersion: anthropicVersion,
			MaxTokens:        s.maxTokens,
			System:           commentarySystemPrompt,
			Messages:         []ClaudeMessage{{Role: "user", Content: BuildCommentaryPrompt(headlines)}},
			Temperature:      0.7,
		})
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}

		output, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(s.model),
			Body:        reqBody,
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			var throttled *types.ThrottlingException
			if errors.As(err, &throttled) {
				return "", &StatusError{Service: BreakerBedrock, StatusCode: 429, Body: throttled.ErrorMessage()}
			}
			return "", fmt.Errorf("failed to invoke model: %w", err)
		}

		var response ClaudeResponse
		if err := json.Unmarshal(output.Body, &response); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}

		if len(response.Content) == 0 {
			return "", fmt.Errorf("empty response from model")
		}

		return response.Content[0].Text, nil
	})

	done(err)
	return text, err
}
