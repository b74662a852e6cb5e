package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"chatlens-backend/internal/llm"
	"chatlens-backend/internal/messages"
	"chatlens-backend/internal/shared/telemetry"
)

const (
	defaultAPIURL = "https://api.openai.com/v1"
	defaultModel  = "gpt-4o-mini"
)

// Client implements llm.Provider using the OpenAI Chat Completions API.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	httpClient  *http.Client
	initialized bool
	lastCheck   time.Time
}

// New constructs an OpenAI provider. The model falls back to a default when
// empty so ValidateConfig only depends on the API key.
func New(apiKey, model string) *Client {
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		baseURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

func (c *Client) Name() string        { return "openai" }
func (c *Client) DisplayName() string { return "ChatGPT" }

// ValidateConfig reports whether the client has the credentials it needs.
func (c *Client) ValidateConfig() bool {
	return c.apiKey != ""
}

// IsAvailable probes the models endpoint with a short deadline.
func (c *Client) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	c.lastCheck = time.Now().UTC()
	return resp.StatusCode == http.StatusOK
}

// Initialize validates configuration then probes availability.
func (c *Client) Initialize(ctx context.Context) bool {
	if c.initialized {
		return true
	}
	if !c.ValidateConfig() {
		telemetry.Error("openai.config_invalid", map[string]any{"provider": c.Name()})
		return false
	}
	if !c.IsAvailable(ctx) {
		telemetry.Error("openai.unavailable", map[string]any{"provider": c.Name()})
		return false
	}
	c.initialized = true
	return true
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateResponse sends a single-user-message completion request.
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, bool) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	})
	if err != nil {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Error("openai.request_failed", map[string]any{"error": err.Error()})
		return "", false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		telemetry.Error("openai.decode_failed", map[string]any{"status": resp.StatusCode, "error": err.Error()})
		return "", false
	}
	if parsed.Error != nil {
		telemetry.Error("openai.api_error", map[string]any{"status": resp.StatusCode, "type": parsed.Error.Type, "message": parsed.Error.Message})
		return "", false
	}
	if resp.StatusCode != http.StatusOK || len(parsed.Choices) == 0 {
		return "", false
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", false
	}
	return content, true
}

// SummarizeChat formats the transcript and requests a day summary.
func (c *Client) SummarizeChat(ctx context.Context, msgs []messages.Message, chatCtx llm.ChatContext) (string, bool) {
	formatted := llm.FormatMessages(llm.OptimizeMessages(msgs))
	if formatted == "" {
		return "", false
	}
	return c.GenerateResponse(ctx, llm.SummarizationPrompt(formatted, chatCtx))
}

// Info describes the provider.
func (c *Client) Info() llm.Info {
	return llm.Info{
		Name:        c.Name(),
		DisplayName: c.DisplayName(),
		Description: "OpenAI Chat Completions",
		Model:       c.model,
		Available:   c.initialized,
		LastCheck:   c.lastCheck,
	}
}

var _ llm.Provider = (*Client)(nil)
