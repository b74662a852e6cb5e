package analysis

import (
	"errors"
	"testing"
)

func TestAllPresetsStableOrder(t *testing.T) {
	all := AllPresets()
	if len(all) != len(presetOrder) {
		t.Fatalf("expected %d presets, got %d", len(presetOrder), len(all))
	}
	for i, preset := range all {
		if preset.ID != presetOrder[i] {
			t.Fatalf("preset %d: expected %s, got %s", i, presetOrder[i], preset.ID)
		}
	}
}

func TestGetPresetUnknown(t *testing.T) {
	_, err := GetPreset("nope")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFullPresetSteps(t *testing.T) {
	preset, err := GetPreset("full")
	if err != nil {
		t.Fatalf("get preset: %v", err)
	}
	want := []StepKind{StepCleaning, StepSummarization, StepReflection, StepImprovement, StepScheduleAnalysis}
	if len(preset.Steps) != len(want) {
		t.Fatalf("expected %d steps, got %v", len(want), preset.Steps)
	}
	for i, step := range want {
		if preset.Steps[i] != step {
			t.Fatalf("step %d: expected %s, got %s", i, step, preset.Steps[i])
		}
	}
}

func TestEveryPresetStepListValidates(t *testing.T) {
	for _, preset := range AllPresets() {
		steps := make([]string, len(preset.Steps))
		for i, s := range preset.Steps {
			steps[i] = string(s)
		}
		if _, err := NewRequest(RequestParams{ChatID: "chat-1", Provider: "fake", Steps: steps}); err != nil {
			t.Fatalf("preset %s does not validate: %v", preset.ID, err)
		}
	}
}
