// Package schedule provides the adaptive send timer for puppywebhook.
//
// This package is internal to puppywebhook. It replaces a fixed ticker with
// a one-shot timer that is torn down and re-armed after every dispatch cycle,
// so each wait can be computed from the current backlog.
//
// The main components are:
//
//   - [Timer]: Cancellable, re-armable one-shot timer with idempotent lifecycle
//   - [Delay]: Backlog-aware delay with jitter and a hard floor
//
// Users of the puppywebhook library should not need to interact with this
// package directly.
package schedule
