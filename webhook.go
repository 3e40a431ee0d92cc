package puppywebhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"runtime/debug"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jpalmerr/puppywebhook/internal/queue"
	"github.com/jpalmerr/puppywebhook/internal/schedule"
)

const (
	defaultUsername         = "puppywebhook"
	defaultMaxMessageLength = 1900
	defaultMinDelay         = 5 * time.Second
	defaultMaxDelay         = 15 * time.Second
	defaultTimeout          = 10 * time.Second

	// maxContentLength is the largest content a Discord webhook accepts.
	maxContentLength = 2000

	// sequenceModulus bounds the rolling tag appended to each message.
	sequenceModulus = 1000
)

// ErrMissingURL is returned by [New] when no webhook URL is given.
var ErrMissingURL = errors.New("webhook URL is required")

// Stats is a snapshot of a [Webhook]'s backlog and delivery count.
type Stats struct {
	// Pending is the number of queued text units not yet packed.
	Pending int

	// Chunks is the number of packed chunks awaiting delivery.
	Chunks int

	// Sent is the number of chunks delivered since construction.
	Sent int64
}

// outcome is what a single dispatch cycle did.
type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeSent
	outcomeFailed
	outcomeCancelled
)

// Webhook batches text messages into a single webhook under an adaptive rate.
//
// Messages queued with [Webhook.Send] are packed into chunks of at most the
// configured length, joined by newlines. One chunk, the oldest, is delivered
// per cycle. Cycles run on a timer whose delay shrinks as the backlog grows,
// or immediately via [Webhook.Flush]. A failed chunk is put back at the front
// of the queue and retried on a later cycle, without limit.
//
// The typical lifecycle is:
//
//	wh, err := puppywebhook.New(os.Getenv("WEBHOOK_URL"))
//	if err != nil {
//	    slog.Error("failed to create webhook", "error", err)
//	    os.Exit(1)
//	}
//	defer wh.Close()
//
//	wh.Send("bot started")
//
//	// before exit, deliver what is left
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	_ = wh.Drain(ctx)
//
// All methods are safe for concurrent use. At most one cycle, and therefore
// one delivery, is in flight at a time.
type Webhook struct {
	url              string
	username         string
	avatar           string
	maxMessageLength int
	minDelay         time.Duration
	maxDelay         time.Duration
	logSends         bool
	logErrors        bool
	logger           *slog.Logger
	transport        Transport
	sendHooks        []func(content string, seq int)
	errorHooks       []func(err error, content string)

	backlog *queue.Backlog
	timer   *schedule.Timer
	sent    atomic.Int64

	// inflight is a single-slot semaphore held for the duration of a cycle.
	inflight chan struct{}

	// intn draws the delay jitter; replaced in tests.
	intn func(n int) int
}

// New creates a [Webhook] posting to webhookURL with the given options.
//
// Defaults:
//   - Username: "puppywebhook"
//   - Avatar: none
//   - Max message length: 1900 characters
//   - Delay: between 5 and 15 seconds (plus jitter)
//   - Log sends: false, log errors: true
//   - Transport: JSON over HTTP with a 10 second timeout
//
// Unless [WithAutoStart] disables it, the send loop is started before New
// returns; call [Webhook.Close] to stop it.
//
// Returns [ErrMissingURL] if webhookURL is empty, or an error if the URL is
// invalid or any option is invalid.
//
// Example:
//
//	wh, err := puppywebhook.New(webhookURL,
//	    puppywebhook.WithUsername("StateFarmBot"),
//	    puppywebhook.WithMaxMessageLength(1800),
//	    puppywebhook.WithLogSends(true),
//	)
func New(webhookURL string, opts ...Option) (*Webhook, error) {
	if webhookURL == "" {
		return nil, ErrMissingURL
	}

	parsedURL, err := url.Parse(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("webhook URL scheme must be http or https, got %q", parsedURL.Scheme)
	}

	cfg := &whConfig{
		username:         defaultUsername,
		maxMessageLength: defaultMaxMessageLength,
		minDelay:         defaultMinDelay,
		maxDelay:         defaultMaxDelay,
		timeout:          defaultTimeout,
		logErrors:        true,
		autoStart:        true,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.minDelay > cfg.maxDelay {
		return nil, fmt.Errorf("min delay %s must not exceed max delay %s", cfg.minDelay, cfg.maxDelay)
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	tr := cfg.transport
	if tr == nil {
		tr = newHTTPTransport(cfg.timeout)
	}

	w := &Webhook{
		url:              webhookURL,
		username:         cfg.username,
		avatar:           cfg.avatar,
		maxMessageLength: cfg.maxMessageLength,
		minDelay:         cfg.minDelay,
		maxDelay:         cfg.maxDelay,
		logSends:         cfg.logSends,
		logErrors:        cfg.logErrors,
		logger:           logger,
		transport:        tr,
		sendHooks:        cfg.sendHooks,
		errorHooks:       cfg.errorHooks,
		backlog:          queue.NewBacklog(cfg.maxMessageLength),
		inflight:         make(chan struct{}, 1),
		intn:             rand.IntN,
	}
	w.timer = schedule.NewTimer(w.nextDelay, w.tick)

	if cfg.autoStart {
		w.Start()
	}

	return w, nil
}

// Send queues a message for delivery.
//
// Non-string values are converted with [fmt.Sprint]. Send never blocks on
// the network and never fails; oversized messages are split when packed.
func (w *Webhook) Send(message any) {
	text, ok := message.(string)
	if !ok {
		text = fmt.Sprint(message)
	}
	w.backlog.Push(text)
}

// Start schedules the send loop. Start is idempotent; calling it on a
// running Webhook is a no-op.
func (w *Webhook) Start() {
	if w.timer.Start() {
		w.logger.Debug("webhook loop started")
	}
}

// Stop cancels the send loop. Queued messages and chunks stay in memory and
// are delivered by a later [Webhook.Start], [Webhook.Flush] or
// [Webhook.Drain]. A delivery already in flight is not interrupted.
// Stop is idempotent.
func (w *Webhook) Stop() {
	if w.timer.Stop() {
		w.logger.Debug("webhook loop stopped")
	}
}

// Running reports whether the send loop is scheduled.
func (w *Webhook) Running() bool {
	return w.timer.Running()
}

// Flush runs one cycle immediately: it packs all queued messages and, if any
// chunk exists, delivers the oldest one.
//
// Flush returns once that cycle, including its network attempt, has
// finished. Delivery failures are not reported here; use [WithErrorHook].
// The only error is ctx.Err() when ctx ends while waiting for a cycle that is
// already in flight.
func (w *Webhook) Flush(ctx context.Context) error {
	if w.process(ctx, true) == outcomeCancelled {
		return ctx.Err()
	}
	return nil
}

// Drain runs cycles back to back until nothing is queued, for use before
// shutdown. After a failed delivery it waits the minimum delay before trying
// again.
//
// Drain returns nil once the backlog is empty, or ctx.Err() if ctx ends
// first. Messages sent concurrently with Drain are drained as well.
func (w *Webhook) Drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pending, chunks := w.backlog.Len(); pending == 0 && chunks == 0 {
			return nil
		}

		switch w.process(ctx, true) {
		case outcomeCancelled:
			return ctx.Err()
		case outcomeFailed:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.minDelay):
			}
		}
	}
}

// Close stops the send loop and releases idle connections of the default
// transport. Queued messages are not delivered; call [Webhook.Drain] first.
// Close is idempotent.
func (w *Webhook) Close() {
	w.Stop()
	if c, ok := w.transport.(interface{ Close() }); ok {
		c.Close()
	}
}

// Stats returns a snapshot of the backlog and the delivery count.
func (w *Webhook) Stats() Stats {
	pending, chunks := w.backlog.Len()
	return Stats{
		Pending: pending,
		Chunks:  chunks,
		Sent:    w.sent.Load(),
	}
}

// Pending returns a copy of the queued, not yet packed text, next first.
func (w *Webhook) Pending() []string {
	return w.backlog.Pending()
}

// Chunks returns a copy of the packed chunks in delivery order (oldest
// first), without sequence suffixes.
func (w *Webhook) Chunks() []string {
	return w.backlog.Chunks()
}

// URL returns the webhook URL messages are posted to.
func (w *Webhook) URL() string {
	return w.url
}

// Username returns the display name attached to every message.
func (w *Webhook) Username() string {
	return w.username
}

// MaxMessageLength returns the maximum chunk length in characters.
func (w *Webhook) MaxMessageLength() int {
	return w.maxMessageLength
}

// MinDelay returns the floor of the adaptive delay.
func (w *Webhook) MinDelay() time.Duration {
	return w.minDelay
}

// MaxDelay returns the base delay used when nothing is queued.
func (w *Webhook) MaxDelay() time.Duration {
	return w.maxDelay
}

// tick is the timer callback.
func (w *Webhook) tick() {
	w.process(context.Background(), false)
}

// nextDelay computes the wait before the next cycle from the chunk backlog.
func (w *Webhook) nextDelay() time.Duration {
	return schedule.Delay(w.minDelay, w.maxDelay, w.backlog.ChunkLen(), w.intn)
}

// process runs one cycle: pack, pick the oldest chunk, deliver it, then
// re-arm the timer. Without force, a cycle with no chunks ends early.
//
// Cycles are serialized by the inflight slot; ctx only bounds the wait for
// the slot and the delivery itself. Hooks run after the slot is released so
// they may call back into Flush or Drain.
func (w *Webhook) process(ctx context.Context, force bool) outcome {
	select {
	case w.inflight <- struct{}{}:
	case <-ctx.Done():
		return outcomeCancelled
	}

	result, notify := w.cycle(ctx, force)
	if notify != nil {
		notify()
	}
	return result
}

// cycle does the work of [Webhook.process] while holding the inflight slot.
// The returned notify, if any, runs the hooks for the outcome.
func (w *Webhook) cycle(ctx context.Context, force bool) (outcome, func()) {
	defer func() { <-w.inflight }()
	defer w.timer.Rearm()

	w.backlog.Pack()

	if w.backlog.ChunkLen() == 0 && !force {
		return outcomeSkipped, nil
	}

	chunk, ok := w.backlog.Oldest()
	if !ok {
		return outcomeSkipped, nil
	}
	if chunk == "" {
		// an empty chunk has nothing to deliver; drop it so it cannot wedge the queue
		w.backlog.Ack()
		w.logger.Debug("discarded empty chunk")
		return outcomeSkipped, nil
	}

	return w.deliver(ctx, chunk)
}

// deliver posts chunk with its sequence suffix and updates the backlog.
func (w *Webhook) deliver(ctx context.Context, chunk string) (outcome, func()) {
	seq := int(w.sent.Load() % sequenceModulus)
	content := truncate(chunk, maxContentLength) + fmt.Sprintf(" (%d)", seq)

	start := time.Now()
	err := w.safePost(ctx, Message{
		Username:  w.username,
		AvatarURL: w.avatar,
		Content:   content,
	})
	latency := time.Since(start)

	if err != nil {
		w.backlog.Requeue()

		if w.logErrors {
			w.logger.Error("webhook send failed",
				"error", err.Error(),
				"chunk_length", utf8.RuneCountInString(chunk),
				"latency_ms", latency.Milliseconds(),
			)
		}
		return outcomeFailed, func() {
			for _, hook := range w.errorHooks {
				w.invokeHookSafe("error", func() { hook(err, chunk) })
			}
		}
	}

	w.backlog.Ack()
	w.sent.Add(1)

	if w.logSends {
		w.logger.Info("webhook message sent",
			"content", content,
			"seq", seq,
			"latency_ms", latency.Milliseconds(),
		)
	}
	return outcomeSent, func() {
		for _, hook := range w.sendHooks {
			w.invokeHookSafe("send", func() { hook(content, seq) })
		}
	}
}

// safePost calls the transport with panic recovery. A panic becomes an
// error carrying a correlation ID; the stack trace is logged under that ID.
func (w *Webhook) safePost(ctx context.Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			w.logger.Error("transport panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("transport panic (correlation_id: %s)", correlationID)
		}
	}()
	return w.transport.Post(ctx, w.url, msg)
}

// invokeHookSafe calls a hook with panic recovery.
// Panics are logged but do not propagate.
func (w *Webhook) invokeHookSafe(kind string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("hook panicked",
				"hook", kind,
				"correlation_id", uuid.NewString(),
				"panic", r,
			)
		}
	}()
	call()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
