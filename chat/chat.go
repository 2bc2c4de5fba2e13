// Package chat implements the message lifecycle of a conversation with the
// pharmacy assistant.
//
// A submitted question is recorded together with a "thinking" placeholder.
// When the remote call returns, the placeholder is replaced by the answer
// (or by the text of the classified failure). After a delay proportional to
// the answer's length the answer is flagged for rich rendering. Every state
// change is published to subscribers as an immutable Snapshot.
package chat

import (
	"slices"
	"time"

	"github.com/pharmbotai/aivae"
	"go.uber.org/zap"
)

// DefaultNoticeDuration is how long the off-topic notice stays visible.
const DefaultNoticeDuration = time.Second

// Snapshot is the published state of a conversation. Version increases with
// every change; consumers receiving snapshots out of order keep the highest.
type Snapshot struct {
	Version  uint64
	Messages []aivae.Message
	Notice   string
	Pending  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithScheduler sets the scheduler used for timers.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithNoticeDuration sets how long a transient notice stays visible.
func WithNoticeDuration(d time.Duration) Option {
	return func(c *Controller) { c.noticeFor = d }
}

// WithIDFunc sets the generator of message identifiers.
func WithIDFunc(f func() aivae.MessageID) Option {
	return func(c *Controller) { c.newID = f }
}

// WithClock sets the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithSession resumes a persisted transcript. Its messages are rehydrated:
// placeholders are dropped and an empty transcript becomes the welcome record.
func WithSession(s aivae.Session) Option {
	return func(c *Controller) {
		if s.ID != "" {
			c.sessionID = s.ID
		}
		if !s.CreatedAt.IsZero() {
			c.createdAt = s.CreatedAt
		}
		c.messages = aivae.Rehydrate(slices.Clone(s.Messages))
	}
}
