package analysis

import (
	"fmt"

	"chatlens-backend/internal/llm"
	"chatlens-backend/internal/runlog"
	"chatlens-backend/internal/schedules"
)

// ExecutionContext carries the state of one run through the executor.
// StepResults is keyed by StepKind string value; a step that runs twice
// overwrites its previous result.
type ExecutionContext struct {
	Request     Request
	Provider    llm.Provider
	Log         *runlog.Session
	Schedules   schedules.Repo
	StepResults map[string]any
	Metadata    map[string]any
}

// NewExecutionContext prepares a context for the given request.
func NewExecutionContext(req Request, provider llm.Provider) *ExecutionContext {
	return &ExecutionContext{
		Request:     req,
		Provider:    provider,
		StepResults: make(map[string]any),
		Metadata:    make(map[string]any),
	}
}

// logPhase records a phase artifact. A write failure is a storage failure and
// aborts the run, so the error propagates to the executor.
func (ec *ExecutionContext) logPhase(step StepKind, phase, content string, meta map[string]any) error {
	if ec.Log == nil {
		return nil
	}
	if _, err := ec.Log.LogPhase(string(step), phase, content, meta); err != nil {
		return fmt.Errorf("run log %s/%s: %w", step, phase, err)
	}
	return nil
}

func (ec *ExecutionContext) stringResult(step StepKind) (string, bool) {
	val, ok := ec.StepResults[string(step)]
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
