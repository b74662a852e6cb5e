package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"chatlens-backend/internal/llm"
	"chatlens-backend/internal/messages"
	"chatlens-backend/internal/queue"
	"chatlens-backend/internal/runlog"
	"chatlens-backend/internal/schedules"
	"chatlens-backend/internal/shared/metrics"
	"chatlens-backend/internal/shared/storage/object"
	"chatlens-backend/internal/shared/telemetry"
	"chatlens-backend/internal/shared/util"
	"chatlens-backend/internal/summaries"
)

// Service orchestrates analysis runs: it resolves steps, initializes the
// provider, wires the run-log session, executes, persists, and archives.
type Service struct {
	Providers       *llm.Registry
	Executor        *Executor
	Messages        messages.Repo
	Schedules       schedules.Repo
	Summaries       summaries.Repo
	Store           object.ObjectStore
	JobQueue        queue.Client
	RunLogDir       string
	ArchiveRunLogs  bool
	DefaultProvider string
	DefaultModel    string
}

// RunParams describe one analysis run. When Messages is empty the service
// fetches the chat's messages for the given day from its message repo.
type RunParams struct {
	ChatID   string
	GroupID  string
	Title    string
	Date     string
	Preset   string
	Steps    []string
	Provider string
	Model    string
	Messages []messages.Message
}

// Run executes a full analysis synchronously and returns its result.
// Validation and provider-initialization failures return an error before any
// step executes; step failures come back inside the Result.
func (s *Service) Run(ctx context.Context, p RunParams) (Result, error) {
	steps, err := s.resolveSteps(p)
	if err != nil {
		return Result{}, err
	}
	providerName := p.Provider
	if providerName == "" {
		providerName = s.DefaultProvider
	}
	model := p.Model
	if model == "" {
		model = s.DefaultModel
	}
	date := p.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	msgs := p.Messages
	if len(msgs) == 0 && s.Messages != nil {
		day, parseErr := time.Parse("2006-01-02", date)
		if parseErr != nil {
			return Result{}, fmt.Errorf("%w: bad date %q", ErrValidation, date)
		}
		msgs, err = s.Messages.ListByChatAndDate(ctx, p.ChatID, day)
		if err != nil {
			return Result{}, fmt.Errorf("load messages: %w", err)
		}
	}

	req, err := NewRequest(RequestParams{
		ChatID:   p.ChatID,
		GroupID:  p.GroupID,
		Title:    p.Title,
		Date:     date,
		Provider: providerName,
		Model:    model,
		Messages: msgs,
		Steps:    steps,
	})
	if err != nil {
		return Result{}, err
	}

	provider, err := s.Providers.Get(providerName)
	if err != nil {
		return Result{}, err
	}
	if !provider.Initialize(ctx) {
		return Result{}, fmt.Errorf("%w: %s", ErrProviderNotReady, providerName)
	}

	metrics.IncAnalysisStarted()
	runID := uuid.NewString()
	ec := NewExecutionContext(req, provider)
	ec.Schedules = s.Schedules

	if s.RunLogDir != "" {
		session, logErr := runlog.NewSession(s.runDir(runID, req.ChatID), map[string]any{
			"runId":    runID,
			"chatId":   req.ChatID,
			"date":     req.Date,
			"provider": providerName,
			"model":    model,
			"steps":    stepNames(req.Steps),
		})
		if logErr != nil {
			return Result{}, fmt.Errorf("create run log: %w", logErr)
		}
		ec.Log = session
	}

	result := s.Executor.Execute(ctx, ec)
	metrics.ObserveAnalysisDurationMs(result.ProcessingSeconds * 1000)
	if result.Success {
		metrics.IncAnalysisCompleted()
	} else {
		metrics.IncAnalysisFailed()
	}

	telemetry.Info("analysis.run_complete", map[string]any{
		"run_id":       runID,
		"chat_id":      req.ChatID,
		"provider":     providerName,
		"success":      result.Success,
		"processing_s": result.ProcessingSeconds,
		"steps":        result.ExecutedSteps,
	})

	if result.Success && s.Summaries != nil {
		if err := s.persist(ctx, req, result); err != nil {
			return result, fmt.Errorf("save summary: %w", err)
		}
	}
	if s.ArchiveRunLogs && s.Store != nil && ec.Log != nil {
		s.archive(ctx, runID, ec.Log)
	}
	return result, nil
}

// Enqueue validates the job and hands it to the queue for the worker.
func (s *Service) Enqueue(ctx context.Context, p RunParams, requestID string) (string, error) {
	if s.JobQueue == nil {
		return "", fmt.Errorf("job queue not configured")
	}
	steps, err := s.resolveSteps(p)
	if err != nil {
		return "", err
	}
	providerName := p.Provider
	if providerName == "" {
		providerName = s.DefaultProvider
	}
	// Validate up front so bad jobs never reach the worker.
	if _, err := NewRequest(RequestParams{
		ChatID:   p.ChatID,
		GroupID:  p.GroupID,
		Provider: providerName,
		Steps:    steps,
	}); err != nil {
		return "", err
	}

	date := p.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	analysisID := uuid.NewString()
	msg := queue.Message{
		AnalysisID: analysisID,
		ChatID:     p.ChatID,
		GroupID:    p.GroupID,
		Date:       date,
		Preset:     p.Preset,
		Steps:      steps,
		Provider:   providerName,
		Model:      p.Model,
		RequestID:  requestID,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	}
	if err := s.JobQueue.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("enqueue analysis: %w", err)
	}
	return analysisID, nil
}

func (s *Service) resolveSteps(p RunParams) ([]string, error) {
	if p.Preset != "" {
		preset, err := GetPreset(p.Preset)
		if err != nil {
			return nil, err
		}
		return stepNames(preset.Steps), nil
	}
	return p.Steps, nil
}

func (s *Service) runDir(runID, chatID string) string {
	chatPart, err := util.SanitizeFileName(chatID)
	if err != nil {
		chatPart = "chat"
	}
	name := fmt.Sprintf("%s_%s_%s", time.Now().UTC().Format("20060102_150405"), chatPart, runID[:8])
	return filepath.Join(s.RunLogDir, name)
}

func (s *Service) persist(ctx context.Context, req Request, result Result) error {
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		day = time.Now().UTC()
	}
	return s.Summaries.Save(ctx, summaries.Summary{
		ID:                uuid.NewString(),
		ChatID:            req.ChatID,
		SummaryDate:       day,
		ResultText:        result.ResultText,
		Provider:          result.Provider,
		Model:             result.Model,
		ProcessingSeconds: result.ProcessingSeconds,
		ExecutedSteps:     result.ExecutedSteps,
		CreatedAt:         time.Now().UTC(),
	})
}

// archive uploads every run-log artifact to the object store. Failures are
// logged and do not affect the result: the local directory stays intact.
func (s *Service) archive(ctx context.Context, runID string, session *runlog.Session) {
	entries, err := os.ReadDir(session.Dir())
	if err != nil {
		telemetry.Warn("analysis.archive_failed", map[string]any{"run_id": runID, "error": err.Error()})
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(session.Dir(), entry.Name())
		f, err := os.Open(path)
		if err != nil {
			telemetry.Warn("analysis.archive_failed", map[string]any{"run_id": runID, "file": entry.Name(), "error": err.Error()})
			continue
		}
		key := fmt.Sprintf("runs/%s/%s", runID, entry.Name())
		contentType := "text/plain; charset=utf-8"
		if filepath.Ext(entry.Name()) == ".json" {
			contentType = "application/json"
		}
		if _, err := s.Store.SaveWithKey(ctx, key, contentType, f); err != nil {
			telemetry.Warn("analysis.archive_failed", map[string]any{"run_id": runID, "file": entry.Name(), "error": err.Error()})
		}
		f.Close()
	}
}
