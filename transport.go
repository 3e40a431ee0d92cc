package puppywebhook

import (
	"context"
	"fmt"
	"time"

	"github.com/jpalmerr/puppywebhook/internal/transport"
)

//go:generate mockgen -destination=internal/mocks/transport.go -package=mocks . Transport

// Message is a single payload delivered to the webhook.
type Message struct {
	// Username is the display name shown for the message.
	Username string

	// AvatarURL is the display avatar. Empty means the webhook default.
	AvatarURL string

	// Content is the packed chunk text with its sequence suffix.
	Content string
}

// Transport delivers a [Message] to a webhook URL.
//
// Post returns nil only when the destination accepted the message. Any error,
// including a non-2xx response, makes the [Webhook] retry the chunk on a later
// cycle. Post is never called concurrently by a single Webhook.
type Transport interface {
	Post(ctx context.Context, url string, msg Message) error
}

// TransportFunc adapts an ordinary function to the [Transport] interface.
type TransportFunc func(ctx context.Context, url string, msg Message) error

// Post calls f(ctx, url, msg).
func (f TransportFunc) Post(ctx context.Context, url string, msg Message) error {
	return f(ctx, url, msg)
}

// StatusError is returned by the default HTTP transport when the webhook
// answers with a non-2xx status.
type StatusError struct {
	// StatusCode is the HTTP status code, e.g. 429.
	StatusCode int

	// Status is the HTTP status line text, e.g. "429 Too Many Requests".
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded with %s", e.Status)
}

// httpTransport is the default [Transport], posting JSON over HTTP.
type httpTransport struct {
	client  *transport.Client
	timeout time.Duration
}

func newHTTPTransport(timeout time.Duration) *httpTransport {
	return &httpTransport{
		client:  transport.NewClient("puppywebhook"),
		timeout: timeout,
	}
}

// Post converts msg to the wire payload and maps the response to an error.
func (t *httpTransport) Post(ctx context.Context, url string, msg Message) error {
	resp := t.client.Post(ctx, url, transport.Payload{
		Username:  msg.Username,
		AvatarURL: msg.AvatarURL,
		Content:   msg.Content,
	}, t.timeout)

	if resp.Error != nil {
		return resp.Error
	}
	if !resp.OK() {
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

// Close releases idle connections.
func (t *httpTransport) Close() {
	t.client.Close()
}
