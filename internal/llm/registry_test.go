package llm

import (
	"context"
	"errors"
	"testing"

	"chatlens-backend/internal/messages"
)

type fakeProvider struct {
	name      string
	valid     bool
	available bool
}

func (f *fakeProvider) Name() string            { return f.name }
func (f *fakeProvider) DisplayName() string     { return f.name }
func (f *fakeProvider) ValidateConfig() bool    { return f.valid }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return f.available }
func (f *fakeProvider) Initialize(ctx context.Context) bool {
	return f.ValidateConfig() && f.IsAvailable(ctx)
}
func (f *fakeProvider) GenerateResponse(ctx context.Context, prompt string) (string, bool) {
	return "", false
}
func (f *fakeProvider) SummarizeChat(ctx context.Context, msgs []messages.Message, chatCtx ChatContext) (string, bool) {
	return "", false
}
func (f *fakeProvider) Info() Info {
	return Info{Name: f.name, DisplayName: f.name}
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get("nope"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestRegistryListAvailableProbes(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeProvider{name: "up", valid: true, available: true})
	reg.Register(&fakeProvider{name: "down", valid: true, available: false})
	reg.Register(&fakeProvider{name: "misconfigured", valid: false, available: true})

	infos := reg.ListAvailable(context.Background())
	if len(infos) != 3 {
		t.Fatalf("expected 3 infos, got %d", len(infos))
	}
	want := map[string]bool{"up": true, "down": false, "misconfigured": false}
	for _, info := range infos {
		if info.Available != want[info.Name] {
			t.Fatalf("provider %s availability = %v", info.Name, info.Available)
		}
	}
	if infos[0].Name != "up" || infos[1].Name != "down" {
		t.Fatalf("registration order lost: %+v", infos)
	}
}
