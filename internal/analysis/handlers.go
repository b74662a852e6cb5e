package analysis

import (
	"context"
	"fmt"
	"time"

	"chatlens-backend/internal/llm"
	"chatlens-backend/internal/messages"
	"chatlens-backend/internal/shared/telemetry"
)

// StepHandler runs one pipeline step against the execution context and
// returns the step result stored under the step's key.
type StepHandler func(ctx context.Context, ec *ExecutionContext) (any, error)

// ExtractedEvent is one event derived from classification results.
type ExtractedEvent struct {
	Type        string `json:"type"`
	MessageID   string `json:"messageId"`
	Description string `json:"description"`
}

// generate logs the request phase, invokes the provider, and logs the
// response phase with the elapsed time. An absent response returns ok=false;
// a run-log write failure returns an error and aborts the run.
func generate(ctx context.Context, ec *ExecutionContext, step StepKind, prompt string) (string, bool, error) {
	if err := ec.logPhase(step, "request", prompt, map[string]any{"promptChars": len(prompt)}); err != nil {
		return "", false, err
	}

	start := time.Now()
	response, ok := ec.Provider.GenerateResponse(ctx, prompt)
	elapsed := time.Since(start)
	if !ok {
		return "", false, nil
	}

	if err := ec.logPhase(step, "response", response, map[string]any{
		"elapsedMs":     elapsed.Milliseconds(),
		"responseChars": len(response),
	}); err != nil {
		return "", false, err
	}
	return response, true, nil
}

func handleCleaning(ctx context.Context, ec *ExecutionContext) (any, error) {
	msgs := ec.Request.Messages
	if len(msgs) == 0 {
		return nil, fmt.Errorf("cleaning: %w", ErrNoMessages)
	}

	response, ok, err := generate(ctx, ec, StepCleaning, cleaningPrompt(msgs))
	if err != nil {
		return nil, err
	}
	if !ok {
		telemetry.Warn("analysis.cleaning_no_response", map[string]any{"chat_id": ec.Request.ChatID})
		return msgs, nil
	}

	keep := parseIDList(response)
	if len(keep) == 0 {
		telemetry.Warn("analysis.cleaning_unparseable", map[string]any{"chat_id": ec.Request.ChatID})
		return msgs, nil
	}

	cleaned := make([]messages.Message, 0, len(msgs))
	for i, msg := range msgs {
		if keep[messageID(msg, i)] {
			cleaned = append(cleaned, msg)
		}
	}
	return cleaned, nil
}

func handleSummarization(ctx context.Context, ec *ExecutionContext) (any, error) {
	msgs := ec.Request.Messages
	if cleaned, ok := ec.StepResults[string(StepCleaning)].([]messages.Message); ok {
		msgs = cleaned
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("summarization: %w", ErrNoMessages)
	}

	formatted := llm.FormatMessages(llm.OptimizeMessages(msgs))
	prompt := llm.SummarizationPrompt(formatted, ec.Request.ChatContext())

	summary, ok, err := generate(ctx, ec, StepSummarization, prompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("summarization: no response from provider")
	}
	return summary, nil
}

func handleReflection(ctx context.Context, ec *ExecutionContext) (any, error) {
	summary, ok := ec.stringResult(StepSummarization)
	if !ok {
		return nil, fmt.Errorf("reflection: %w: no summarization result", ErrDependencyUnsatisfied)
	}

	prompt := reflectionPrompt(summary, ec.Request.Messages, ec.Request.Date)
	reflection, ok, err := generate(ctx, ec, StepReflection, prompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("reflection: no response from provider")
	}
	return reflection, nil
}

func handleImprovement(ctx context.Context, ec *ExecutionContext) (any, error) {
	summary, ok := ec.stringResult(StepSummarization)
	if !ok {
		return nil, fmt.Errorf("improvement: %w: no summarization result", ErrDependencyUnsatisfied)
	}
	reflection, ok := ec.stringResult(StepReflection)
	if !ok {
		return nil, fmt.Errorf("improvement: %w: no reflection result", ErrDependencyUnsatisfied)
	}

	improved, ok, err := generate(ctx, ec, StepImprovement, improvementPrompt(summary, reflection))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("improvement: no response from provider")
	}
	return improved, nil
}

func handleClassification(ctx context.Context, ec *ExecutionContext) (any, error) {
	content, ok := ec.stringResult(StepSummarization)
	if !ok {
		msgs := ec.Request.Messages
		if cleaned, isCleaned := ec.StepResults[string(StepCleaning)].([]messages.Message); isCleaned {
			msgs = cleaned
		}
		if len(msgs) == 0 {
			return nil, fmt.Errorf("classification: %w", ErrNoMessages)
		}
		content = classificationInputJSON(msgs)
	}

	response, ok, err := generate(ctx, ec, StepClassification, classificationPrompt(content))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("classification: no response from provider")
	}

	classified := parseClassification(response)
	if len(classified) == 0 {
		telemetry.Warn("analysis.classification_unparseable", map[string]any{"chat_id": ec.Request.ChatID})
	}
	return classified, nil
}

// handleExtraction derives events from the classification without a provider
// call: only categories that matter to parents become events.
func handleExtraction(ctx context.Context, ec *ExecutionContext) (any, error) {
	_ = ctx
	classified, ok := ec.StepResults[string(StepClassification)].([]ClassifiedMessage)
	if !ok || len(classified) == 0 {
		return nil, fmt.Errorf("extraction: %w: no classification result", ErrDependencyUnsatisfied)
	}

	var events []ExtractedEvent
	for _, item := range classified {
		switch item.Class {
		case "events", "important", "rules":
			events = append(events, ExtractedEvent{
				Type:        item.Class,
				MessageID:   item.MessageID,
				Description: fmt.Sprintf("event of type %s", item.Class),
			})
		}
	}
	return events, nil
}

// handleScheduleAnalysis never aborts the run: every failure short-circuits
// to a placeholder string that is logged under the "error" phase.
func handleScheduleAnalysis(ctx context.Context, ec *ExecutionContext) (any, error) {
	fail := func(reason string) (any, error) {
		placeholder := "Schedule analysis unavailable: " + reason
		if err := ec.logPhase(StepScheduleAnalysis, "error", placeholder, nil); err != nil {
			return nil, err
		}
		return placeholder, nil
	}

	if ec.Request.GroupID == "" {
		return fail("no group for this chat")
	}
	if ec.Schedules == nil {
		return fail("no schedule storage configured")
	}

	scheduleText, err := ec.Schedules.GetScheduleText(ctx, ec.Request.GroupID)
	if err != nil || scheduleText == "" {
		return fail("no stored schedule for group " + ec.Request.GroupID)
	}

	tomorrow := time.Now().Add(24 * time.Hour)
	prompt := schedulePrompt(scheduleText, tomorrow.Format("02.01.2006"), tomorrow.Weekday().String())

	response, ok, err := generate(ctx, ec, StepScheduleAnalysis, prompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return fail("no response from provider")
	}
	return response, nil
}

func handleParentSummary(ctx context.Context, ec *ExecutionContext) (any, error) {
	events, ok := ec.StepResults[string(StepExtraction)].([]ExtractedEvent)
	if !ok || len(events) == 0 {
		return nil, fmt.Errorf("parent summary: %w: no extracted events", ErrDependencyUnsatisfied)
	}

	summary, ok, err := generate(ctx, ec, StepParentSummary, parentSummaryPrompt(events))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("parent summary: no response from provider")
	}
	return summary, nil
}
