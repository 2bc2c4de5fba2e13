// Package reveal implements the typed reveal of a response: the text is
// shown one user-perceived character (grapheme cluster) at a time.
package reveal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rivo/uniseg"
)

const (
	// DefaultInterval is the time between two revealed characters.
	DefaultInterval = 5 * time.Millisecond

	// PerCharDelay and MaxDelay bound how long a response stays in its
	// typed form before switching to rich text.
	PerCharDelay = 20 * time.Millisecond
	MaxDelay     = 5 * time.Second
)

// ErrAlreadyRun indicates Run was called on a Reveal that already ran.
var ErrAlreadyRun = errors.New("reveal: already run")

// Delay returns how long a response of the given text stays typed before it
// is re-rendered as rich text: 20ms per character, capped at 5s.
func Delay(text string) time.Duration {
	return DelayFor(uniseg.GraphemeClusterCount(text))
}

// DelayFor is Delay for a known character count.
func DelayFor(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	if n >= int(MaxDelay/PerCharDelay) {
		return MaxDelay
	}
	return time.Duration(n) * PerCharDelay
}

// Reveal is a one-shot sequence of growing prefixes of a text. Each call to
// Next reveals one more character. Once the whole text is shown the
// Completed channel is closed, exactly once. A Reveal cannot be restarted.
type Reveal struct {
	mu        sync.Mutex
	text      string
	ends      []int // byte offset just past each grapheme cluster
	shown     int
	cancelled bool
	ran       bool
	done      chan struct{}
}

// New creates a Reveal for text. Empty text is complete immediately.
func New(text string) *Reveal {
	r := &Reveal{text: text, done: make(chan struct{})}
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		_, to := g.Positions()
		r.ends = append(r.ends, to)
	}
	if len(r.ends) == 0 {
		close(r.done)
	}
	return r
}

// Next reveals one more character and returns the visible prefix. It returns
// ok=false once the text is complete or the reveal was cancelled.
func (r *Reveal) Next() (prefix string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled || r.shown >= len(r.ends) {
		return "", false
	}
	r.shown++
	if r.shown == len(r.ends) {
		close(r.done)
	}
	return r.text[:r.ends[r.shown-1]], true
}

// Prefix returns the currently visible text.
func (r *Reveal) Prefix() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shown == 0 {
		return ""
	}
	return r.text[:r.ends[r.shown-1]]
}

// Text returns the full text being revealed.
func (r *Reveal) Text() string { return r.text }

// Len returns the number of characters in the full text.
func (r *Reveal) Len() int { return len(r.ends) }

// Done reports whether the full text has been revealed.
func (r *Reveal) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shown >= len(r.ends)
}

// Completed returns a channel closed when the full text has been revealed.
// It is never closed for a cancelled reveal.
func (r *Reveal) Completed() <-chan struct{} { return r.done }

// Cancel stops the reveal. Subsequent calls to Next return ok=false and no
// completion is signalled. Cancelling is not an error and is idempotent.
func (r *Reveal) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shown < len(r.ends) {
		r.cancelled = true
	}
}

// Cancelled reports whether the reveal was cancelled before completing.
func (r *Reveal) Cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// Run drives the reveal, calling emit with each new prefix every interval.
// It returns nil when the text is complete or the reveal was cancelled, and
// ctx.Err() if the context ends first; in both cases emit is not called again.
func (r *Reveal) Run(ctx context.Context, interval time.Duration, emit func(prefix string)) error {
	r.mu.Lock()
	if r.ran {
		r.mu.Unlock()
		return ErrAlreadyRun
	}
	r.ran = true
	r.mu.Unlock()

	if r.Done() {
		return nil
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Cancel()
			return ctx.Err()
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				r.Cancel()
				return err
			}
			prefix, ok := r.Next()
			if !ok {
				return nil
			}
			emit(prefix)
			if r.Done() {
				return nil
			}
		}
	}
}
