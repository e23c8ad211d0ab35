package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default sampling parameters, tuned for determinism-leaning output.
const (
	DefaultTemperature = 0.3
	DefaultTopP        = 0.95
	DefaultMaxTokens   = 2000
	DefaultTimeout     = 30 * time.Second
)

// CompletionClient submits a single chat completion request and returns the
// first choice's text content.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// AzureOptions configures the Azure OpenAI chat-completions client.
type AzureOptions struct {
	Endpoint   string // e.g. https://eastus.api.cognitive.microsoft.com
	APIKey     string
	Deployment string
	APIVersion string

	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

// AzureClient calls an Azure OpenAI chat-completions deployment over REST.
type AzureClient struct {
	opts       AzureOptions
	httpClient *http.Client
}

// Chat completions wire format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	MaxTokens        int           `json:"max_tokens"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewAzureClient creates a client. Zero-valued sampling options pick up the
// package defaults.
func NewAzureClient(opts AzureOptions) *AzureClient {
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = DefaultTopP
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &AzureClient{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// Complete makes one request. No retries: the caller treats any error as a
// signal to use the fallback path.
func (c *AzureClient) Complete(ctx context.Context, system, user string) (string, error) {
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.opts.Endpoint, c.opts.Deployment, c.opts.APIVersion)

	body, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
		TopP:        c.opts.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion service returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	return parsed.Choices[0].Message.Content, nil
}
