package analysis

import "fmt"

// StepKind identifies one pipeline step. The set is closed: requests carrying
// anything else are rejected at construction.
type StepKind string

const (
	StepCleaning         StepKind = "cleaning"
	StepSummarization    StepKind = "summarization"
	StepReflection       StepKind = "reflection"
	StepImprovement      StepKind = "improvement"
	StepClassification   StepKind = "classification"
	StepExtraction       StepKind = "extraction"
	StepScheduleAnalysis StepKind = "schedule_analysis"
	StepParentSummary    StepKind = "parent_summary"
)

var allSteps = []StepKind{
	StepCleaning,
	StepSummarization,
	StepReflection,
	StepImprovement,
	StepClassification,
	StepExtraction,
	StepScheduleAnalysis,
	StepParentSummary,
}

// AllSteps returns the full step catalog in canonical order.
func AllSteps() []StepKind {
	out := make([]StepKind, len(allSteps))
	copy(out, allSteps)
	return out
}

// ParseStepKind validates a raw step name.
func ParseStepKind(raw string) (StepKind, error) {
	kind := StepKind(raw)
	for _, known := range allSteps {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: unknown step %q", ErrValidation, raw)
}

// requestDependencies lists steps that must be requested together: the key
// step is only valid when all listed steps are also part of the request.
var requestDependencies = map[StepKind][]StepKind{
	StepImprovement: {StepReflection},
}
