// Package puppywebhook provides a rate-limited, batching sender for chat
// webhooks such as Discord's.
//
// Callers emit many small, log-like messages; puppywebhook packs them into
// as few webhook posts as fit the destination's message size limit and
// delivers them at an adaptive pace that stays under its rate limit.
//
// # Quick Start
//
//	wh, _ := puppywebhook.New("https://discord.com/api/webhooks/...")
//	defer wh.Close()
//
//	wh.Send("bot started")
//	wh.Send("loaded config")
//
//	// on shutdown, deliver what is still queued
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	_ = wh.Drain(ctx)
//
// # Configuration
//
// puppywebhook uses the functional options pattern for configuration:
//
//	wh, err := puppywebhook.New(webhookURL,
//	    puppywebhook.WithUsername("StateFarmBot"),
//	    puppywebhook.WithAvatar("https://example.com/avatar.png"),
//	    puppywebhook.WithMaxMessageLength(1800),
//	    puppywebhook.WithMinDelay(5 * time.Second),
//	    puppywebhook.WithMaxDelay(15 * time.Second),
//	    puppywebhook.WithErrorHook(func(err error, content string) {
//	        metrics.WebhookFailures.Inc()
//	    }),
//	)
//
// # Batching and Pacing
//
// Every cycle first packs all queued messages: messages longer than the
// maximum length are split into fixed-size fragments, and messages are
// joined with newlines onto the newest chunk while it has room. Then the
// oldest chunk is posted with a rolling " (n)" sequence suffix.
//
// The delay before the next cycle is the maximum delay minus one second per
// queued chunk (at most seven), plus a random jitter of -4s to +3s, and
// never less than the minimum delay. Busy webhooks drain faster, and several
// senders sharing one webhook do not fire in lockstep.
//
// A chunk that fails to deliver is put back at the front of the queue and
// retried on a later cycle. There is no retry limit: watch [WithErrorHook]
// or [Webhook.Stats] if the destination may be down for long.
//
// # Architecture
//
// puppywebhook consists of several internal packages (under internal/):
//
//   - internal/queue: Pending text and packed chunk queues
//   - internal/schedule: Re-armable timer and the adaptive delay
//   - internal/transport: JSON-over-HTTP webhook client
//
// The config package and cmd/puppywebhook run the sender as a standalone
// binary fed from stdin.
package puppywebhook
