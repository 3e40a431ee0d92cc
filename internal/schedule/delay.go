package schedule

import "time"

const (
	// maxBacklogSteps caps how far the backlog can pull the delay down.
	maxBacklogSteps = 7

	// backlogStep is subtracted from the maximum delay per queued chunk.
	backlogStep = time.Second

	// jitterBuckets is the number of discrete jitter values, -4s through +3s.
	jitterBuckets = 8
	jitterOffset  = 4
	jitterStep    = time.Second
)

// Delay computes the wait before the next dispatch cycle.
//
// The base delay is maxDelay minus one second per queued chunk (at most
// seven), so larger backlogs drain faster. A random jitter of -4s to +3s in
// whole seconds is added, drawn from intn which must return a value in
// [0, n). The result is never below minDelay.
func Delay(minDelay, maxDelay time.Duration, backlog int, intn func(n int) int) time.Duration {
	base := maxDelay - time.Duration(min(max(backlog, 0), maxBacklogSteps))*backlogStep
	jitter := time.Duration(intn(jitterBuckets)-jitterOffset) * jitterStep
	return max(minDelay, base+jitter)
}
