package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatlens-backend/internal/shared/telemetry"
)

// PipelineStep is one named stage of a composable pipeline. Unlike executor
// steps, a pipeline step may be optional: its failure or timeout is logged,
// a nil result is stored, and the pipeline continues.
type PipelineStep struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Run      func(ctx context.Context, ec *ExecutionContext) (any, error)
}

// Pipeline executes a fixed list of steps with per-step timeouts.
type Pipeline struct {
	Name  string
	Steps []PipelineStep
}

// ErrStepTimeout marks a step that exceeded its timeout.
var ErrStepTimeout = errors.New("step timed out")

// Execute runs the pipeline. A required step's failure or timeout aborts with
// a failed result carrying the elapsed time; optional failures are skipped.
func (p *Pipeline) Execute(ctx context.Context, ec *ExecutionContext) Result {
	start := time.Now()

	for _, step := range p.Steps {
		result, err := p.runStep(ctx, ec, step)
		if err != nil {
			if step.Required {
				telemetry.Error("pipeline.step_failed", map[string]any{
					"pipeline": p.Name,
					"step":     step.Name,
					"error":    err.Error(),
				})
				return Result{
					Success:           false,
					Error:             fmt.Sprintf("step %s: %v", step.Name, err),
					Provider:          ec.Request.Provider,
					Model:             ec.Request.Model,
					ProcessingSeconds: time.Since(start).Seconds(),
					StepResults:       copyResults(ec.StepResults),
				}
			}
			telemetry.Warn("pipeline.step_skipped", map[string]any{
				"pipeline": p.Name,
				"step":     step.Name,
				"error":    err.Error(),
			})
			ec.StepResults[step.Name] = nil
			continue
		}
		ec.StepResults[step.Name] = result
	}

	return Result{
		Success:           true,
		Provider:          ec.Request.Provider,
		Model:             ec.Request.Model,
		ProcessingSeconds: time.Since(start).Seconds(),
		StepResults:       copyResults(ec.StepResults),
	}
}

func (p *Pipeline) runStep(ctx context.Context, ec *ExecutionContext, step PipelineStep) (any, error) {
	if step.Run == nil {
		return nil, fmt.Errorf("step %s has no run function", step.Name)
	}
	if step.Timeout <= 0 {
		return step.Run(ctx, ec)
	}

	stepCtx, cancel := context.WithTimeout(ctx, step.Timeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := step.Run(stepCtx, ec)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-stepCtx.Done():
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrStepTimeout
		}
		return nil, stepCtx.Err()
	}
}
