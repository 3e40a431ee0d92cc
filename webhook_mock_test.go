package puppywebhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/jpalmerr/puppywebhook"
	"github.com/jpalmerr/puppywebhook/internal/mocks"
)

func TestWebhook_MockTransport_RetriesSameChunk(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)

	url := "https://discord.example.com/api/webhooks/2/token"
	want := puppywebhook.Message{Username: "bot", Content: "A\nB (0)"}

	gomock.InOrder(
		tr.EXPECT().Post(gomock.Any(), url, want).Return(errors.New("503 Service Unavailable")),
		tr.EXPECT().Post(gomock.Any(), url, want).Return(nil),
	)

	w, err := puppywebhook.New(url,
		puppywebhook.WithTransport(tr),
		puppywebhook.WithUsername("bot"),
		puppywebhook.WithAutoStart(false),
		puppywebhook.WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Send("A")
	w.Send("B")

	_ = w.Flush(context.Background())
	_ = w.Flush(context.Background())

	if got := w.Stats().Sent; got != 1 {
		t.Errorf("Sent = %d, want 1", got)
	}
}

func TestWebhook_MockTransport_NoCallWhenIdle(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := mocks.NewMockTransport(ctrl)
	tr.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w, err := puppywebhook.New("https://discord.example.com/api/webhooks/3/token",
		puppywebhook.WithTransport(tr),
		puppywebhook.WithAutoStart(false),
		puppywebhook.WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	for i := 0; i < 3; i++ {
		if err := w.Flush(context.Background()); err != nil {
			t.Fatalf("Flush() error = %v", err)
		}
	}
}

func TestWebhook_HTTPTransport_PostsJSON(t *testing.T) {
	type payload struct {
		Username  string `json:"username"`
		AvatarURL string `json:"avatar_url"`
		Content   string `json:"content"`
	}

	received := make(chan payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		body, _ := io.ReadAll(r.Body)
		var p payload
		if err := json.Unmarshal(body, &p); err != nil {
			t.Errorf("invalid JSON body %q: %v", body, err)
		}
		received <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w, err := puppywebhook.New(srv.URL,
		puppywebhook.WithUsername("StateFarmBot"),
		puppywebhook.WithAvatar("https://example.com/a.png"),
		puppywebhook.WithAutoStart(false),
		puppywebhook.WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Send("Bot started")
	w.Send("Loaded config")
	if err := w.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	select {
	case p := <-received:
		want := payload{
			Username:  "StateFarmBot",
			AvatarURL: "https://example.com/a.png",
			Content:   "Bot started\nLoaded config (0)",
		}
		if p != want {
			t.Errorf("payload = %+v, want %+v", p, want)
		}
	case <-time.After(time.Second):
		t.Fatal("webhook server received nothing")
	}

	if got := w.Stats().Sent; got != 1 {
		t.Errorf("Sent = %d, want 1", got)
	}
}

func TestWebhook_HTTPTransport_RateLimitedIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var statusErr *puppywebhook.StatusError
	w, err := puppywebhook.New(srv.URL,
		puppywebhook.WithAutoStart(false),
		puppywebhook.WithLogger(slog.New(slog.DiscardHandler)),
		puppywebhook.WithTimeout(time.Second),
		puppywebhook.WithErrorHook(func(err error, content string) {
			errors.As(err, &statusErr)
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	w.Send("status update")
	_ = w.Flush(context.Background())

	if statusErr == nil {
		t.Fatal("error hook did not receive a *StatusError")
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusTooManyRequests)
	}
	if got := w.Stats().Pending; got != 1 {
		t.Errorf("Pending = %d after 429, want 1", got)
	}

	_ = w.Flush(context.Background())
	if got := w.Stats().Sent; got != 1 {
		t.Errorf("Sent = %d after retry, want 1", got)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
}
