// Package llm produces clinical interpretations of enriched variants through
// a generative-text service speaking the OpenAI chat completions protocol.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Defaults target Gemini's OpenAI-compatible endpoint.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 60 * time.Second

	// NoResponse is returned when the service answers with empty text.
	NoResponse = "No response received."
)

// ErrMissingCredential is returned when Interpret is called without an API key.
var ErrMissingCredential = errors.New("API key not found: provide a key with --api-key or llm.api_key")

// Interpreter turns a prompt into interpretation text.
type Interpreter interface {
	Interpret(ctx context.Context, prompt, credential string) (string, error)
}

// Config configures a Client.
type Config struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32
}

// Client calls a chat completions endpoint with a per-call credential.
type Client struct {
	config Config
	logger *zap.Logger
}

// NewClient creates an interpretation client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{config: config, logger: zap.NewNop()}
}

// SetLogger sets the logger for generation failures.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// Interpret sends prompt using credential as the API key. The only error
// returned is ErrMissingCredential; generation failures come back as text
// prefixed with "Error occurred:".
func (c *Client) Interpret(ctx context.Context, prompt, credential string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", ErrMissingCredential
	}

	clientConfig := openai.DefaultConfig(credential)
	clientConfig.BaseURL = strings.TrimRight(c.config.BaseURL, "/")
	client := openai.NewClientWithConfig(clientConfig)

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Warn("interpretation request failed", zap.String("model", c.config.Model), zap.Error(err))
		return fmt.Sprintf("Error occurred: %v", err), nil
	}
	if len(resp.Choices) == 0 {
		return NoResponse, nil
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return NoResponse, nil
	}
	return text, nil
}
