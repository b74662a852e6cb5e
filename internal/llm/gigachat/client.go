package gigachat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"chatlens-backend/internal/llm"
	"chatlens-backend/internal/messages"
	"chatlens-backend/internal/shared/telemetry"
)

const (
	defaultAPIURL  = "https://gigachat.devices.sberbank.ru/api/v1"
	defaultAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	defaultModel   = "GigaChat"
	defaultScope   = "GIGACHAT_API_PERS"
)

// Client implements llm.Provider for the GigaChat API. Access tokens are
// fetched via the OAuth2 client-credentials flow under the caller's context
// and cached until expiry.
type Client struct {
	model       string
	baseURL     string
	httpClient  *http.Client
	authClient  *http.Client
	conf        *clientcredentials.Config
	configured  bool
	initialized bool
	lastCheck   time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// New constructs a GigaChat provider from the combined auth key, which is the
// base64 encoding of "client_id:client_secret".
func New(authKey, scope, model string) *Client {
	if strings.TrimSpace(scope) == "" {
		scope = defaultScope
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	c := &Client{
		model:   model,
		baseURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		authClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: rqUIDTransport{next: http.DefaultTransport},
		},
	}

	clientID, clientSecret, ok := splitAuthKey(authKey)
	if !ok {
		return c
	}
	c.conf = &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     defaultAuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
		EndpointParams: map[string][]string{
			"scope": {scope},
		},
	}
	c.configured = true
	return c
}

// WithAuthURL overrides the OAuth2 token endpoint.
func (c *Client) WithAuthURL(u string) *Client {
	if c.conf != nil {
		c.conf.TokenURL = u
	}
	return c
}

// freshToken returns the cached token while it is still valid, otherwise
// fetches a new one. The fetch runs under ctx so caller deadlines apply.
func (c *Client) freshToken(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.Valid() {
		return c.token, nil
	}
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, c.authClient)
	token, err := c.conf.TokenSource(authCtx).Token()
	if err != nil {
		return nil, err
	}
	c.token = token
	return token, nil
}

// rqUIDTransport injects the per-request RqUID header the auth endpoint requires.
type rqUIDTransport struct {
	next http.RoundTripper
}

func (t rqUIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("RqUID", uuid.NewString())
	return t.next.RoundTrip(clone)
}

func splitAuthKey(authKey string) (string, string, bool) {
	authKey = strings.TrimSpace(authKey)
	if authKey == "" {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(authKey)
	if err != nil {
		return "", "", false
	}
	id, secret, found := strings.Cut(string(decoded), ":")
	if !found || id == "" || secret == "" {
		return "", "", false
	}
	return id, secret, true
}

func (c *Client) Name() string        { return "gigachat" }
func (c *Client) DisplayName() string { return "GigaChat" }

// ValidateConfig reports whether the auth key decoded into usable credentials.
func (c *Client) ValidateConfig() bool {
	return c.configured
}

// IsAvailable fetches a token under the caller's context.
func (c *Client) IsAvailable(ctx context.Context) bool {
	if c.conf == nil {
		return false
	}
	token, err := c.freshToken(ctx)
	c.lastCheck = time.Now().UTC()
	if err != nil {
		telemetry.Warn("gigachat.token_failed", map[string]any{"error": err.Error()})
		return false
	}
	return token.Valid()
}

// Initialize validates configuration then probes availability.
func (c *Client) Initialize(ctx context.Context) bool {
	if c.initialized {
		return true
	}
	if !c.ValidateConfig() {
		telemetry.Error("gigachat.config_invalid", map[string]any{"provider": c.Name()})
		return false
	}
	if !c.IsAvailable(ctx) {
		telemetry.Error("gigachat.unavailable", map[string]any{"provider": c.Name()})
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
}

// GenerateResponse sends a completion request with a fresh bearer token.
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, bool) {
	if c.conf == nil {
		return "", false
	}
	token, err := c.freshToken(ctx)
	if err != nil {
		telemetry.Error("gigachat.token_failed", map[string]any{"error": err.Error()})
		return "", false
	}

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
	token.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Error("gigachat.request_failed", map[string]any{"error": err.Error()})
		return "", false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	if resp.StatusCode != http.StatusOK {
		telemetry.Error("gigachat.api_error", map[string]any{"status": resp.StatusCode})
		return "", false
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
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
		Description: "GigaChat API with OAuth2 client-credentials tokens",
		Model:       c.model,
		Available:   c.initialized,
		LastCheck:   c.lastCheck,
	}
}

var _ llm.Provider = (*Client)(nil)
