package analysis

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"chatlens-backend/internal/llm"
	"chatlens-backend/internal/messages"
	"chatlens-backend/internal/queue"
	"chatlens-backend/internal/summaries"
)

type fakeQueue struct {
	sent []queue.Message
	err  error
}

func (f *fakeQueue) Send(ctx context.Context, msg queue.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func newTestService(t *testing.T, provider llm.Provider) (*Service, *messages.MemoryRepo, *summaries.MemoryRepo) {
	t.Helper()
	registry := llm.NewRegistry()
	registry.Register(provider)
	msgRepo := messages.NewMemoryRepo()
	sumRepo := summaries.NewMemoryRepo()
	svc := &Service{
		Providers:       registry,
		Executor:        NewExecutor(),
		Messages:        msgRepo,
		Summaries:       sumRepo,
		RunLogDir:       t.TempDir(),
		DefaultProvider: "fake",
	}
	return svc, msgRepo, sumRepo
}

func seedMessages(t *testing.T, repo *messages.MemoryRepo, day time.Time) {
	t.Helper()
	for i, msg := range testMessages() {
		msg.SentAt = day.Add(time.Duration(i) * time.Minute).Add(9 * time.Hour)
		if err := repo.Save(context.Background(), msg); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
}

func TestServiceRunEndToEnd(t *testing.T) {
	provider := &fakeProvider{respond: func(prompt string) (string, bool) {
		return "the day summary", true
	}}
	svc, msgRepo, sumRepo := newTestService(t, provider)
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	seedMessages(t, msgRepo, day)

	result, err := svc.Run(context.Background(), RunParams{ChatID: "chat-1", Date: "2026-03-05"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if !strings.Contains(result.ResultText, "the day summary") {
		t.Fatalf("unexpected result text: %q", result.ResultText)
	}

	saved, err := sumRepo.GetByChatAndDate(context.Background(), "chat-1", day)
	if err != nil {
		t.Fatalf("load summary: %v", err)
	}
	if saved.ResultText != result.ResultText {
		t.Fatalf("persisted text mismatch: %q vs %q", saved.ResultText, result.ResultText)
	}

	runs, err := os.ReadDir(svc.RunLogDir)
	if err != nil {
		t.Fatalf("read run log dir: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run directory, got %d", len(runs))
	}
	if !strings.Contains(runs[0].Name(), "chat-1") {
		t.Fatalf("run directory name missing chat id: %s", runs[0].Name())
	}
}

func TestServiceRunResolvesPreset(t *testing.T) {
	provider := &fakeProvider{respond: func(prompt string) (string, bool) {
		return "the day summary", true
	}}
	svc, msgRepo, _ := newTestService(t, provider)
	seedMessages(t, msgRepo, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))

	result, err := svc.Run(context.Background(), RunParams{ChatID: "chat-1", Date: "2026-03-05", Preset: "fast"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.ExecutedSteps) != 1 || result.ExecutedSteps[0] != "summarization" {
		t.Fatalf("unexpected executed steps: %v", result.ExecutedSteps)
	}
}

func TestServiceRunUnknownProvider(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{})

	_, err := svc.Run(context.Background(), RunParams{ChatID: "chat-1", Provider: "mystery"})
	if !errors.Is(err, llm.ErrUnknownProvider) {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestServiceRunProviderNotReady(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{unavailable: true})

	_, err := svc.Run(context.Background(), RunParams{ChatID: "chat-1"})
	if !errors.Is(err, ErrProviderNotReady) {
		t.Fatalf("expected provider-not-ready error, got %v", err)
	}
}

func TestServiceRunRejectsBadPreset(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{})

	_, err := svc.Run(context.Background(), RunParams{ChatID: "chat-1", Preset: "warp"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceEnqueueSendsValidatedJob(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{})
	q := &fakeQueue{}
	svc.JobQueue = q

	analysisID, err := svc.Enqueue(context.Background(), RunParams{ChatID: "chat-1", Preset: "fast"}, "req-1")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if analysisID == "" {
		t.Fatal("expected analysis id")
	}
	if len(q.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(q.sent))
	}
	sent := q.sent[0]
	if sent.AnalysisID != analysisID || sent.ChatID != "chat-1" || sent.RequestID != "req-1" {
		t.Fatalf("unexpected message: %+v", sent)
	}
	if len(sent.Steps) != 1 || sent.Steps[0] != "summarization" {
		t.Fatalf("unexpected steps: %v", sent.Steps)
	}
	if sent.Version != 1 {
		t.Fatalf("unexpected version: %d", sent.Version)
	}
}

func TestServiceEnqueueRejectsInvalidSteps(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeProvider{})
	q := &fakeQueue{}
	svc.JobQueue = q

	_, err := svc.Enqueue(context.Background(), RunParams{ChatID: "chat-1", Steps: []string{"improvement"}}, "req-2")
	if !errors.Is(err, ErrDependencyUnsatisfied) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(q.sent) != 0 {
		t.Fatalf("invalid job must not be sent, got %d", len(q.sent))
	}
}
