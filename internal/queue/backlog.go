package queue

import (
	"sync"
	"unicode/utf8"

	"github.com/gammazero/deque"
	"github.com/samber/lo"
)

// separator joins messages coalesced into the same chunk.
const separator = "\n"

// Backlog is the pending-text and packed-chunk state of a dispatcher.
//
// Text pushed with [Backlog.Push] waits in the pending queue until
// [Backlog.Pack] drains it into chunks. Chunks are kept newest-first: packing
// coalesces onto the front chunk, while transmission always takes the back
// (oldest) chunk via [Backlog.Oldest].
//
// Every pending unit and every chunk is at most maxLen runes once packed.
// All methods are safe for concurrent use.
type Backlog struct {
	mu      sync.Mutex
	maxLen  int
	pending deque.Deque[string]
	chunks  deque.Deque[string] // front is newest, back is oldest
}

// NewBacklog creates an empty [Backlog] whose chunks hold at most maxLen runes.
//
// maxLen must be positive; callers validate it before construction.
func NewBacklog(maxLen int) *Backlog {
	return &Backlog{maxLen: maxLen}
}

// Push appends text to the pending queue. No length check happens here;
// oversized text is split lazily by [Backlog.Pack].
func (b *Backlog) Push(text string) {
	b.mu.Lock()
	b.pending.PushBack(text)
	b.mu.Unlock()
}

// Pack drains the pending queue into chunks.
//
// Oversized units are split into fragments which are put back at the front
// of the pending queue in their original order. Every other unit is appended
// to the newest chunk with a newline separator while the result fits in
// maxLen runes; otherwise it opens a new newest chunk on its own.
func (b *Backlog) Pack() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.pending.Len() > 0 {
		unit := b.pending.PopFront()

		if utf8.RuneCountInString(unit) > b.maxLen {
			parts := Split(unit, b.maxLen)
			for i := len(parts) - 1; i >= 0; i-- {
				b.pending.PushFront(parts[i])
			}
			continue
		}

		if b.chunks.Len() == 0 {
			b.chunks.PushFront(unit)
			continue
		}

		next := b.chunks.Front() + separator + unit
		if utf8.RuneCountInString(next) > b.maxLen {
			b.chunks.PushFront(unit)
		} else {
			b.chunks.Set(0, next)
		}
	}
}

// Oldest returns the chunk that should be transmitted next.
// The second return value is false when there are no chunks.
func (b *Backlog) Oldest() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.chunks.Len() == 0 {
		return "", false
	}
	return b.chunks.Back(), true
}

// Ack removes the oldest chunk after it was delivered (or discarded).
// Safe to call on an empty backlog.
func (b *Backlog) Ack() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.chunks.Len() > 0 {
		b.chunks.PopBack()
	}
}

// Requeue moves every chunk back to the front of the pending queue, oldest
// first, so that the next [Backlog.Pack] rebuilds them in the same order and
// the oldest is retried before anything newer. It returns the oldest chunk's
// content, or false if there was no chunk.
func (b *Backlog) Requeue() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.chunks.Len() == 0 {
		return "", false
	}
	oldest := b.chunks.Back()
	// newest is pushed first and so ends up furthest from the front
	for b.chunks.Len() > 0 {
		b.pending.PushFront(b.chunks.PopFront())
	}
	return oldest, true
}

// Len returns the number of pending text units and packed chunks.
func (b *Backlog) Len() (pending, chunks int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending.Len(), b.chunks.Len()
}

// ChunkLen returns the number of packed chunks.
func (b *Backlog) ChunkLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chunks.Len()
}

// Pending returns a copy of the pending queue, front first.
func (b *Backlog) Pending() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lo.Times(b.pending.Len(), b.pending.At)
}

// Chunks returns a copy of the packed chunks in transmission order
// (oldest first).
func (b *Backlog) Chunks() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	last := b.chunks.Len() - 1
	return lo.Times(b.chunks.Len(), func(i int) string {
		return b.chunks.At(last - i)
	})
}

// Split cuts text into consecutive fragments of at most size runes. The last
// fragment may be shorter. Concatenating the fragments yields text again.
func Split(text string, size int) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}
	return lo.ChunkString(text, size)
}
