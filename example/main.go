package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/puppywebhook"
)

func main() {
	// start mock server (see mock_server.go)
	go StartMockWebhookServer(":9999")
	time.Sleep(100 * time.Millisecond)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	wh, err := puppywebhook.New("http://localhost:9999/webhook",
		puppywebhook.WithUsername("PuppyDemo"),
		puppywebhook.WithMaxMessageLength(300),
		puppywebhook.WithMinDelay(500*time.Millisecond),
		puppywebhook.WithMaxDelay(4*time.Second),
		puppywebhook.WithLogger(logger),
		puppywebhook.WithErrorHook(func(err error, content string) {
			fmt.Printf("  ✗ retrying %d characters: %v\n", len([]rune(content)), err)
		}),
		puppywebhook.WithSendHook(func(content string, seq int) {
			fmt.Printf("  ✓ delivered #%d\n", seq)
		}),
	)
	if err != nil {
		slog.Error("failed to create webhook", "error", err)
		os.Exit(1)
	}
	defer wh.Close()

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   puppywebhook Demo                                   ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   A fake bot logs in bursts; watch the chunks         ║")
	fmt.Println("  ║   arrive faster as the backlog grows.                 ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop and drain                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events := []string{
		"player joined the lobby",
		"match started on map Kingdom",
		"player eliminated",
		"reconnecting to game server",
		"inventory synced",
		"round won",
	}

	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()

	done := time.After(20 * time.Second)
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-done:
			break loop
		case t := <-ticker.C:
			// bursts of 1-5 lines
			burst := 1 + rand.Intn(5)
			for i := 0; i < burst; i++ {
				wh.Send(fmt.Sprintf("[%s] %s", t.Format("15:04:05.000"), events[rand.Intn(len(events))]))
			}
			stats := wh.Stats()
			slog.Debug("backlog", "pending", stats.Pending, "chunks", stats.Chunks)
		}
	}

	stats := wh.Stats()
	fmt.Printf("\n  draining %d pending messages and %d chunks...\n", stats.Pending, stats.Chunks)

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := wh.Drain(drainCtx); err != nil {
		slog.Error("drain incomplete", "error", err)
		os.Exit(1)
	}
	fmt.Printf("  done, %d chunks delivered\n", wh.Stats().Sent)
}
