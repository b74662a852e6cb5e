package analysis

import (
	"fmt"

	"chatlens-backend/internal/llm"
	"chatlens-backend/internal/messages"
)

// Request is a validated, immutable analysis request. Construct it with
// NewRequest; the step list and message slice are defensive copies.
type Request struct {
	ChatID   string
	GroupID  string
	Title    string
	Date     string
	Provider string
	Model    string
	Messages []messages.Message
	Steps    []StepKind
}

// RequestParams are the raw inputs to NewRequest.
type RequestParams struct {
	ChatID   string
	GroupID  string
	Title    string
	Date     string
	Provider string
	Model    string
	Messages []messages.Message
	Steps    []string
}

// NewRequest validates the step list and normalizes defaults. An empty step
// list means a plain summarization run. Dependency violations are rejected
// here, before any provider call is made.
func NewRequest(p RequestParams) (Request, error) {
	if p.ChatID == "" {
		return Request{}, fmt.Errorf("%w: chat id is required", ErrValidation)
	}
	if p.Provider == "" {
		return Request{}, fmt.Errorf("%w: provider is required", ErrValidation)
	}

	steps := make([]StepKind, 0, len(p.Steps))
	for _, raw := range p.Steps {
		kind, err := ParseStepKind(raw)
		if err != nil {
			return Request{}, err
		}
		steps = append(steps, kind)
	}
	if len(steps) == 0 {
		steps = []StepKind{StepSummarization}
	}

	requested := make(map[StepKind]bool, len(steps))
	for _, s := range steps {
		requested[s] = true
	}
	for _, s := range steps {
		for _, dep := range requestDependencies[s] {
			if !requested[dep] {
				return Request{}, fmt.Errorf("%w: step %s requires %s", ErrDependencyUnsatisfied, s, dep)
			}
		}
	}

	msgs := make([]messages.Message, len(p.Messages))
	copy(msgs, p.Messages)

	return Request{
		ChatID:   p.ChatID,
		GroupID:  p.GroupID,
		Title:    p.Title,
		Date:     p.Date,
		Provider: p.Provider,
		Model:    p.Model,
		Messages: msgs,
		Steps:    steps,
	}, nil
}

// ChatContext builds the provider-facing chat context.
func (r Request) ChatContext() llm.ChatContext {
	return llm.ChatContext{
		ChatID:    r.ChatID,
		GroupID:   r.GroupID,
		ChatTitle: r.Title,
		Date:      r.Date,
	}
}
