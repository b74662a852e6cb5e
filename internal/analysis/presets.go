package analysis

import "fmt"

// Preset is a named, ready-made step list.
type Preset struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Steps       []StepKind `json:"steps"`
	Icon        string     `json:"icon"`
}

var presetOrder = []string{"fast", "reflection", "cleaning", "structured", "with_schedule", "full"}

var presets = map[string]Preset{
	"fast": {
		ID:          "fast",
		Name:        "Quick summary",
		Description: "Fast analysis without extra steps",
		Steps:       []StepKind{StepSummarization},
		Icon:        "⚡",
	},
	"reflection": {
		ID:          "reflection",
		Name:        "With reflection",
		Description: "Summary + critical review + improved version",
		Steps:       []StepKind{StepSummarization, StepReflection, StepImprovement},
		Icon:        "🔄",
	},
	"cleaning": {
		ID:          "cleaning",
		Name:        "With data cleaning",
		Description: "Filter the important messages, then summarize",
		Steps:       []StepKind{StepCleaning, StepSummarization},
		Icon:        "🧹",
	},
	"structured": {
		ID:          "structured",
		Name:        "Structured analysis",
		Description: "Classification + extraction + parent digest",
		Steps:       []StepKind{StepClassification, StepExtraction, StepParentSummary},
		Icon:        "🔍",
	},
	"with_schedule": {
		ID:          "with_schedule",
		Name:        "With schedule",
		Description: "Summary + tomorrow's schedule analysis",
		Steps:       []StepKind{StepSummarization, StepScheduleAnalysis},
		Icon:        "📅",
	},
	"full": {
		ID:          "full",
		Name:        "Full analysis",
		Description: "Cleaning + summary + reflection + improvement + schedule",
		Steps:       []StepKind{StepCleaning, StepSummarization, StepReflection, StepImprovement, StepScheduleAnalysis},
		Icon:        "🎯",
	},
}

// GetPreset returns the preset registered under id.
func GetPreset(id string) (Preset, error) {
	preset, ok := presets[id]
	if !ok {
		return Preset{}, fmt.Errorf("%w: unknown preset %q", ErrValidation, id)
	}
	return preset, nil
}

// AllPresets returns every preset in a stable order.
func AllPresets() []Preset {
	out := make([]Preset, 0, len(presetOrder))
	for _, id := range presetOrder {
		out = append(out, presets[id])
	}
	return out
}

// PresetIDs returns the preset ids in a stable order.
func PresetIDs() []string {
	out := make([]string, len(presetOrder))
	copy(out, presetOrder)
	return out
}
