package paas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateLog_LogsInAndDefaultsAgent(t *testing.T) {
	var got CreateLogRequest
	logins := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			logins++
			_ = json.NewEncoder(w).Encode(map[string]string{
				"token":      "tok-1",
				"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			})
		case "/api/v1/logs":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("authorization=%q", r.Header.Get("Authorization"))
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := &Client{BaseURL: srv.URL, APIKey: "k"}
	for i := 0; i < 2; i++ {
		if err := p.CreateLog(context.Background(), CreateLogRequest{Action: "a", Level: "info"}); err != nil {
			t.Fatalf("CreateLog err=%v", err)
		}
	}
	if logins != 1 {
		t.Fatalf("logins=%d want 1", logins)
	}
	if got.Agent != DefaultAgent || got.Action != "a" {
		t.Fatalf("got=%+v", got)
	}
}

func TestLogin_DecodesPlainBodyAndRejectsEmptyToken(t *testing.T) {
	plain := func(body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(body))
		}))
	}
	ok := plain(`{"token":"tok-2","expires_at":""}`)
	defer ok.Close()
	empty := plain(`{"token":"","expires_at":""}`)
	defer empty.Close()

	p := &Client{BaseURL: ok.URL, APIKey: "k"}
	if err := p.Login(context.Background()); err != nil {
		t.Fatalf("Login err=%v", err)
	}
	if p.Token() != "tok-2" {
		t.Fatalf("token=%q", p.Token())
	}
	if err := (&Client{BaseURL: empty.URL, APIKey: "k"}).Login(context.Background()); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestClientFromContext_NilSafe(t *testing.T) {
	if ClientFromContext(context.Background()) != nil {
		t.Fatalf("expected nil client")
	}
	ctx := WithClient(context.Background(), nil)
	if ClientFromContext(ctx) != nil {
		t.Fatalf("nil client should not be stored")
	}
	LogBestEffortCtx(ctx, "noop", "info", nil)
}
