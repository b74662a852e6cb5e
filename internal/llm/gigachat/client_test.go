package gigachat

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSplitAuthKey(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("client-1:secret-2"))
	id, secret, ok := splitAuthKey(key)
	if !ok {
		t.Fatalf("expected valid key")
	}
	if id != "client-1" || secret != "secret-2" {
		t.Fatalf("unexpected parts: %q %q", id, secret)
	}
}

func TestSplitAuthKeyRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not-base64!!!",
		base64.StdEncoding.EncodeToString([]byte("no-separator")),
		base64.StdEncoding.EncodeToString([]byte(":missing-id")),
	}
	for _, key := range cases {
		if _, _, ok := splitAuthKey(key); ok {
			t.Fatalf("expected rejection for %q", key)
		}
	}
}

func TestIsAvailableFetchesAndCachesToken(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("RqUID") == "" {
			t.Errorf("missing RqUID header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":1800}`))
	}))
	defer srv.Close()

	key := base64.StdEncoding.EncodeToString([]byte("id:secret"))
	client := New(key, "", "").WithAuthURL(srv.URL)

	if !client.IsAvailable(context.Background()) {
		t.Fatalf("expected provider available")
	}
	if !client.IsAvailable(context.Background()) {
		t.Fatalf("expected provider available on second probe")
	}
	if hits != 1 {
		t.Fatalf("expected 1 token fetch, got %d", hits)
	}
}

func TestIsAvailableHonorsCallerContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":1800}`))
	}))
	defer srv.Close()

	key := base64.StdEncoding.EncodeToString([]byte("id:secret"))
	client := New(key, "", "").WithAuthURL(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if client.IsAvailable(ctx) {
		t.Fatalf("expected canceled context to fail the token fetch")
	}
}

func TestValidateConfig(t *testing.T) {
	if New("garbage", "", "").ValidateConfig() {
		t.Fatalf("expected invalid config for bad auth key")
	}
	key := base64.StdEncoding.EncodeToString([]byte("id:secret"))
	client := New(key, "", "")
	if !client.ValidateConfig() {
		t.Fatalf("expected valid config")
	}
	if client.model != defaultModel {
		t.Fatalf("expected default model, got %q", client.model)
	}
}
