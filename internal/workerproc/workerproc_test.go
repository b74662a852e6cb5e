package workerproc

import (
	"context"
	"errors"
	"testing"

	"chatlens-backend/internal/queue"
)

type fakeProcessor struct {
	jobs []queue.Message
	err  error
}

func (f *fakeProcessor) ProcessJob(ctx context.Context, msg queue.Message) error {
	f.jobs = append(f.jobs, msg)
	return f.err
}

func TestParseMessageRejectsEmptyBody(t *testing.T) {
	_, _, err := ParseMessage("   ")
	var emptyErr ErrEmptyBody
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestParseMessageRejectsBadJSON(t *testing.T) {
	_, meta, err := ParseMessage("{not json")
	var decodeErr ErrDecode
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if meta.BodyLen == 0 || meta.BodySHA == "" {
		t.Fatalf("expected meta for diagnostics, got %+v", meta)
	}
}

func TestParseMessageRequiresChatID(t *testing.T) {
	payload, _ := queue.EncodeMessage(queue.Message{RequestID: "req-1"})
	_, _, err := ParseMessage(string(payload))
	var missingErr ErrMissingChatID
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected ErrMissingChatID, got %v", err)
	}
	if missingErr.RequestID != "req-1" {
		t.Fatalf("expected request id carried, got %q", missingErr.RequestID)
	}
}

func TestHandleMessageDispatchesJob(t *testing.T) {
	processor := &fakeProcessor{}
	payload, _ := queue.EncodeMessage(queue.Message{
		AnalysisID: "analysis-1",
		ChatID:     "chat-1",
		Date:       "2026-03-05",
		Preset:     "fast",
	})

	if err := HandleMessage(context.Background(), processor, string(payload)); err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if len(processor.jobs) != 1 || processor.jobs[0].ChatID != "chat-1" {
		t.Fatalf("unexpected jobs: %+v", processor.jobs)
	}
}

func TestHandleMessageWrapsProcessError(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("boom")}
	payload, _ := queue.EncodeMessage(queue.Message{AnalysisID: "analysis-2", ChatID: "chat-2"})

	err := HandleMessage(context.Background(), processor, string(payload))
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.ChatID != "chat-2" {
		t.Fatalf("expected chat id carried, got %q", procErr.ChatID)
	}
}
