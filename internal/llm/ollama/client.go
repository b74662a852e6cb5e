package ollama

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
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3"
)

// Client implements llm.Provider for a local Ollama server.
type Client struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	initialized bool
	lastCheck   time.Time
}

// New constructs an Ollama provider.
func New(baseURL, model string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			// Local models can be slow on long transcripts.
			Timeout: 300 * time.Second,
		},
	}
}

func (c *Client) Name() string        { return "ollama" }
func (c *Client) DisplayName() string { return "Ollama (local)" }

// ValidateConfig reports whether a base URL and model are set.
func (c *Client) ValidateConfig() bool {
	return c.baseURL != "" && c.model != ""
}

// IsAvailable probes the tags endpoint of the local server.
func (c *Client) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
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
		telemetry.Error("ollama.config_invalid", map[string]any{"provider": c.Name()})
		return false
	}
	if !c.IsAvailable(ctx) {
		telemetry.Error("ollama.unavailable", map[string]any{"baseUrl": c.baseURL})
		return false
	}
	c.initialized = true
	return true
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// GenerateResponse runs a non-streaming generate call.
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, bool) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Error("ollama.request_failed", map[string]any{"error": err.Error()})
		return "", false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		telemetry.Error("ollama.decode_failed", map[string]any{"status": resp.StatusCode, "error": err.Error()})
		return "", false
	}
	if parsed.Error != "" {
		telemetry.Error("ollama.api_error", map[string]any{"status": resp.StatusCode, "message": parsed.Error})
		return "", false
	}
	content := strings.TrimSpace(parsed.Response)
	if resp.StatusCode != http.StatusOK || content == "" {
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
		Description: "Local Ollama server",
		Model:       c.model,
		Available:   c.initialized,
		LastCheck:   c.lastCheck,
	}
}

var _ llm.Provider = (*Client)(nil)
