package llm

import (
	"context"
	"errors"
	"time"

	"chatlens-backend/internal/messages"
)

// ChatContext carries chat-level details handed to providers and steps.
type ChatContext struct {
	ChatID    string `json:"chatId"`
	GroupID   string `json:"groupId,omitempty"`
	ChatTitle string `json:"chatTitle,omitempty"`
	Date      string `json:"date,omitempty"`
}

// Info describes a provider for listing and health endpoints.
type Info struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	Model       string    `json:"model,omitempty"`
	Available   bool      `json:"available"`
	LastCheck   time.Time `json:"lastCheck,omitempty"`
}

// Provider abstracts an LLM backend for chat analysis.
//
// GenerateResponse and SummarizeChat report failure through their boolean:
// any transport, auth, or empty-output condition yields ("", false) and the
// caller decides whether that aborts the run. Providers never panic on probe.
type Provider interface {
	Name() string
	DisplayName() string
	ValidateConfig() bool
	IsAvailable(ctx context.Context) bool
	Initialize(ctx context.Context) bool
	GenerateResponse(ctx context.Context, prompt string) (string, bool)
	SummarizeChat(ctx context.Context, msgs []messages.Message, chatCtx ChatContext) (string, bool)
	Info() Info
}

var (
	// ErrUnknownProvider is returned when a provider name is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrProviderUnavailable is returned when a provider fails initialization.
	ErrProviderUnavailable = errors.New("provider unavailable")
)
