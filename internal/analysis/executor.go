package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatlens-backend/internal/shared/metrics"
	"chatlens-backend/internal/shared/telemetry"
)

// noResultMarker is the aggregate text when no step produced output.
const noResultMarker = "No analysis produced."

// Result is the outcome of one analysis run.
type Result struct {
	Success           bool           `json:"success"`
	ResultText        string         `json:"resultText,omitempty"`
	Error             string         `json:"error,omitempty"`
	Provider          string         `json:"provider"`
	Model             string         `json:"model,omitempty"`
	ProcessingSeconds float64        `json:"processingSeconds"`
	ExecutedSteps     []string       `json:"executedSteps"`
	StepResults       map[string]any `json:"stepResults,omitempty"`
}

// Executor runs step lists sequentially through a handler registry.
type Executor struct {
	handlers map[StepKind]StepHandler
}

// NewExecutor constructs an executor with the default handler per step.
func NewExecutor() *Executor {
	e := &Executor{handlers: make(map[StepKind]StepHandler)}
	e.Register(StepCleaning, handleCleaning)
	e.Register(StepSummarization, handleSummarization)
	e.Register(StepReflection, handleReflection)
	e.Register(StepImprovement, handleImprovement)
	e.Register(StepClassification, handleClassification)
	e.Register(StepExtraction, handleExtraction)
	e.Register(StepScheduleAnalysis, handleScheduleAnalysis)
	e.Register(StepParentSummary, handleParentSummary)
	return e
}

// Register installs or replaces the handler for a step.
func (e *Executor) Register(kind StepKind, handler StepHandler) {
	e.handlers[kind] = handler
}

// Execute runs the request's steps in order. Every step is hard-required:
// the first failure stops the run and yields a failed result carrying the
// elapsed time. Results are stored per step key, last writer wins.
func (e *Executor) Execute(ctx context.Context, ec *ExecutionContext) Result {
	start := time.Now()
	steps := ec.Request.Steps

	for i, step := range steps {
		telemetry.Info("analysis.step_start", map[string]any{
			"chat_id": ec.Request.ChatID,
			"step":    string(step),
			"index":   i + 1,
			"total":   len(steps),
		})

		handler, ok := e.handlers[step]
		if !ok {
			return e.failed(ec, steps, start, fmt.Errorf("no handler for step %s", step))
		}

		stepStart := time.Now()
		result, err := handler(ctx, ec)
		if err != nil {
			metrics.IncStepFailed()
			telemetry.Error("analysis.step_failed", map[string]any{
				"chat_id": ec.Request.ChatID,
				"step":    string(step),
				"error":   err.Error(),
			})
			return e.failed(ec, steps, start, err)
		}
		metrics.IncStepCompleted()
		metrics.ObserveStepDurationMs(float64(time.Since(stepStart).Milliseconds()))

		ec.StepResults[string(step)] = result
	}

	elapsed := time.Since(start)
	return Result{
		Success:           true,
		ResultText:        aggregate(ec, steps),
		Provider:          ec.Request.Provider,
		Model:             ec.Request.Model,
		ProcessingSeconds: elapsed.Seconds(),
		ExecutedSteps:     stepNames(steps),
		StepResults:       copyResults(ec.StepResults),
	}
}

func (e *Executor) failed(ec *ExecutionContext, steps []StepKind, start time.Time, err error) Result {
	return Result{
		Success:           false,
		Error:             err.Error(),
		Provider:          ec.Request.Provider,
		Model:             ec.Request.Model,
		ProcessingSeconds: time.Since(start).Seconds(),
		ExecutedSteps:     stepNames(steps),
		StepResults:       copyResults(ec.StepResults),
	}
}

// aggregate renders the final text in a fixed priority order: summarization,
// then reflection and its improvement, then schedule analysis, then the
// parent digest. Absent sections are skipped.
func aggregate(ec *ExecutionContext, steps []StepKind) string {
	requested := make(map[StepKind]bool, len(steps))
	for _, s := range steps {
		requested[s] = true
	}

	var parts []string
	if requested[StepSummarization] {
		if summary, ok := ec.stringResult(StepSummarization); ok {
			parts = append(parts, "**Day summary:**\n"+summary)
		}
	}
	if requested[StepImprovement] {
		if reflection, ok := ec.stringResult(StepReflection); ok {
			parts = append(parts, "**Review and improvements:**\n"+reflection)
		}
		if improvement, ok := ec.stringResult(StepImprovement); ok {
			parts = append(parts, "**Improved version:**\n"+improvement)
		}
	} else if requested[StepReflection] {
		if reflection, ok := ec.stringResult(StepReflection); ok {
			parts = append(parts, "**Review:**\n"+reflection)
		}
	}
	if requested[StepScheduleAnalysis] {
		if schedule, ok := ec.stringResult(StepScheduleAnalysis); ok {
			parts = append(parts, schedule)
		}
	}
	if requested[StepParentSummary] {
		if digest, ok := ec.stringResult(StepParentSummary); ok {
			parts = append(parts, "**Parent digest:**\n"+digest)
		}
	}

	if len(parts) == 0 {
		return noResultMarker
	}
	return strings.Join(parts, "\n\n")
}

func stepNames(steps []StepKind) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = string(s)
	}
	return out
}

func copyResults(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
