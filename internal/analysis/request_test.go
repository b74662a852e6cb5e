package analysis

import (
	"errors"
	"testing"
)

func TestNewRequestDefaultsToSummarization(t *testing.T) {
	req, err := NewRequest(RequestParams{ChatID: "chat-1", Provider: "fake"})
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if len(req.Steps) != 1 || req.Steps[0] != StepSummarization {
		t.Fatalf("expected default summarization step, got %v", req.Steps)
	}
}

func TestNewRequestRequiresChatID(t *testing.T) {
	_, err := NewRequest(RequestParams{Provider: "fake"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRequestRequiresProvider(t *testing.T) {
	_, err := NewRequest(RequestParams{ChatID: "chat-1"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRequestRejectsUnknownStep(t *testing.T) {
	_, err := NewRequest(RequestParams{ChatID: "chat-1", Provider: "fake", Steps: []string{"teleportation"}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRequestRejectsImprovementWithoutReflection(t *testing.T) {
	_, err := NewRequest(RequestParams{
		ChatID:   "chat-1",
		Provider: "fake",
		Steps:    []string{"summarization", "improvement"},
	})
	if !errors.Is(err, ErrDependencyUnsatisfied) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewRequestAcceptsImprovementWithReflection(t *testing.T) {
	req, err := NewRequest(RequestParams{
		ChatID:   "chat-1",
		Provider: "fake",
		Steps:    []string{"summarization", "reflection", "improvement"},
	})
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if len(req.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %v", req.Steps)
	}
}
