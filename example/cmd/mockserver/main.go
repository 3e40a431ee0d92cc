// Standalone mock webhook receiver for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	echo "hello" | go run ./cmd/puppywebhook send -c example/config.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"
)

func main() {
	fmt.Println("Mock webhook receiver starting on :9999")
	fmt.Println("POST http://localhost:9999/webhook, about 1 in 8 requests gets 429")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	http.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)

		if rand.Intn(8) == 0 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			slog.Warn("rejected delivery", "status", http.StatusTooManyRequests)
			return
		}

		var payload struct {
			Username string `json:"username"`
			Content  string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		fmt.Printf("── %s ──\n%s\n\n", payload.Username, payload.Content)
		w.WriteHeader(http.StatusNoContent)
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
