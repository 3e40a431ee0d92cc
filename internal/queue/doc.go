// Package queue holds the in-memory message backlog for puppywebhook.
//
// This package is internal to puppywebhook and manages the two queues a
// webhook dispatcher works from: raw text waiting to be packed, and packed
// chunks waiting to be transmitted. Both are double-ended queues so that
// split fragments and failed chunks can be put back at the front.
//
// The main components are:
//
//   - [Backlog]: Thread-safe pending text and chunk queues
//   - [Split]: Rune-aware fixed-size splitting of oversized text
//
// Users of the puppywebhook library should not need to interact with this
// package directly. The backlog is managed internally by the Webhook.
package queue
