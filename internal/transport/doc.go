// Package transport provides the HTTP client that delivers webhook payloads.
//
// This package is internal to puppywebhook and handles a single concern:
// POSTing a JSON message to a webhook URL and reporting what happened. It does
// not decide whether a response counts as a failure; the caller interprets the
// status code.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with per-request timeout and size limits
//   - [Payload]: JSON body accepted by Discord-compatible webhooks
//   - [Response]: Outcome of a single POST
//
// Users of the puppywebhook library should not need to interact with this
// package directly. The default transport of a Webhook is built on Client.
package transport
