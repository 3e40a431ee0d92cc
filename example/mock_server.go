package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// webhookPayload mirrors the JSON body puppywebhook posts.
type webhookPayload struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Content   string `json:"content"`
}

// StartMockWebhookServer runs a mock webhook receiver at /webhook.
// Roughly one request in eight is rejected with 429 Too Many Requests, like
// a rate-limited Discord channel, so the retry path shows up in the demo.
// Call this in a goroutine before creating the Webhook.
func StartMockWebhookServer(addr string) {
	var (
		mu       sync.Mutex
		received int
	)

	http.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// simulate small latency variance
		time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)

		if rand.Intn(8) == 0 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			slog.Warn("rejected delivery", "status", http.StatusTooManyRequests)
			return
		}

		var payload webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		mu.Lock()
		received++
		n := received
		mu.Unlock()

		slog.Info("received message",
			"n", n,
			"username", payload.Username,
			"length", len([]rune(payload.Content)),
			"content", payload.Content,
		)
		w.WriteHeader(http.StatusNoContent)
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
