package chat

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pharmbotai/aivae"
	"github.com/pharmbotai/aivae/reveal"
	"go.uber.org/zap"
)

// Controller owns the ordered message records of one conversation.
//
// All mutations are serialized: each one reads the latest state and produces
// the next, then publishes it. Submissions are serialized as well, so at
// most one placeholder exists at any time.
type Controller struct {
	svc       aivae.QueryService
	token     string
	log       *zap.Logger
	sched     Scheduler
	noticeFor time.Duration
	newID     func() aivae.MessageID
	now       func() time.Time

	submitMu sync.Mutex

	mu          sync.Mutex
	messages    []aivae.Message
	notice      string
	pending     bool
	version     uint64
	gen         uint64 // bumped whenever the conversation is replaced
	timers      map[aivae.MessageID]Timer
	noticeTimer Timer
	noticeSeq   uint64
	subs        []subscriber
	nextSub     int
	closed      bool
	sessionID   string
	createdAt   time.Time
	updatedAt   time.Time
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// New creates a Controller that submits questions to svc with the given
// session token. The conversation starts with the welcome record unless
// WithSession is given.
func New(svc aivae.QueryService, token string, opts ...Option) *Controller {
	c := &Controller{
		svc:       svc,
		token:     token,
		log:       zap.NewNop(),
		sched:     TimeScheduler{},
		noticeFor: DefaultNoticeDuration,
		newID:     func() aivae.MessageID { return aivae.MessageID(uuid.NewString()) },
		now:       time.Now,
		messages:  aivae.DefaultMessages(),
		timers:    make(map[aivae.MessageID]Timer),
		sessionID: uuid.NewString(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.createdAt.IsZero() {
		c.createdAt = c.now()
	}
	c.updatedAt = c.createdAt
	return c
}

// Messages returns a copy of the current records.
func (c *Controller) Messages() []aivae.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Snapshot returns the current published state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Pending reports whether a submission is waiting for its response.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Session returns the transcript for persistence. Placeholders are omitted.
func (c *Controller) Session() aivae.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return aivae.Session{
		ID:        c.sessionID,
		Messages:  aivae.Rehydrate(slices.Clone(c.messages)),
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}
}

// Subscribe registers fn to receive every published snapshot, starting with
// the current one. fn runs on the goroutine that made the change and must
// not call mutating Controller methods. The returned func unsubscribes.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	snap := c.snapshotLocked()
	c.mu.Unlock()

	fn(snap)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.subs = slices.DeleteFunc(c.subs, func(s subscriber) bool { return s.id == id })
	}
}

// Submit sends a question and records its outcome. Input that is empty after
// trimming is ignored. Submit blocks until the response is handled; failures
// are never returned but turned into bot messages.
func (c *Controller) Submit(ctx context.Context, raw string) {
	question := strings.TrimSpace(raw)
	if question == "" {
		return
	}

	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	placeholder := c.newID()
	var gen uint64
	started := c.update(func() bool {
		if c.closed {
			return false
		}
		now := c.now()
		gen = c.gen
		c.messages = append(c.messages,
			aivae.Message{ID: c.newID(), Sender: aivae.SenderUser, Text: question, CreatedAt: now},
			aivae.Message{ID: placeholder, Sender: aivae.SenderBot, Thinking: true, CreatedAt: now},
		)
		c.pending = true
		return true
	})
	if !started {
		return
	}
	c.log.Debug("query_submitted", zap.Int("question_len", len(question)))

	resp, err := c.svc.SubmitQuery(ctx, c.token, question)
	if err == nil && !resp.Valid() {
		c.log.Warn("query_unexpected_response", zap.String("status", resp.Status))
		err = aivae.ErrUnexpectedResponse
	}
	if err != nil {
		c.fail(gen, placeholder, err)
		return
	}
	c.succeed(gen, placeholder, resp.Response)
}

// succeed replaces the placeholder with the answer and schedules its switch
// to rich text.
func (c *Controller) succeed(gen uint64, placeholder aivae.MessageID, text string) {
	answer := aivae.Message{ID: c.newID(), Sender: aivae.SenderBot, Text: text, CreatedAt: c.now()}
	if !c.resolve(gen, placeholder, answer) {
		c.log.Info("query_superseded", zap.String("placeholder_id", string(placeholder)))
		return
	}

	delay := reveal.Delay(text)
	c.log.Debug("query_answered",
		zap.String("message_id", string(answer.ID)),
		zap.Int("response_len", len(text)),
		zap.Duration("reveal_delay", delay),
	)
	t := c.sched.AfterFunc(delay, func() { c.markRich(answer.ID) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(answer.ID); !c.closed && i >= 0 && !c.messages[i].RichText {
		c.timers[answer.ID] = t
		return
	}
	t.Stop()
}

// fail replaces the placeholder with the text of the classified failure.
func (c *Controller) fail(gen uint64, placeholder aivae.MessageID, err error) {
	cls := aivae.Classify(err)
	c.log.Info("query_failed", zap.Stringer("category", cls.Category), zap.Error(err))

	msg := aivae.Message{ID: c.newID(), Sender: aivae.SenderBot, Text: cls.Text, CreatedAt: c.now()}
	if !c.resolve(gen, placeholder, msg) {
		c.log.Info("query_superseded", zap.String("placeholder_id", string(placeholder)))
		return
	}
	if cls.Category == aivae.CategoryOffTopic {
		c.raiseNotice(aivae.OffTopicNotice)
	}
}

// resolve removes the placeholder and appends msg in one state change. It
// reports false when the conversation was replaced after the placeholder was
// created.
func (c *Controller) resolve(gen uint64, placeholder aivae.MessageID, msg aivae.Message) bool {
	return c.update(func() bool {
		if c.closed || gen != c.gen {
			return false
		}
		if i := c.indexOf(placeholder); i >= 0 {
			c.messages = slices.Delete(c.messages, i, i+1)
		}
		c.messages = append(c.messages, msg)
		c.pending = false
		return true
	})
}

// markRich flips an answer to rich text. A record that no longer exists or
// is already rich is left alone.
func (c *Controller) markRich(id aivae.MessageID) {
	changed := c.update(func() bool {
		delete(c.timers, id)
		if c.closed {
			return false
		}
		i := c.indexOf(id)
		if i < 0 || c.messages[i].Sender != aivae.SenderBot || c.messages[i].RichText {
			return false
		}
		c.messages[i].RichText = true
		return true
	})
	if !changed {
		c.log.Debug("reveal_target_gone", zap.String("message_id", string(id)))
	}
}

// raiseNotice shows a transient notice that clears itself.
func (c *Controller) raiseNotice(text string) {
	var seq uint64
	c.update(func() bool {
		if c.noticeTimer != nil {
			c.noticeTimer.Stop()
			c.noticeTimer = nil
		}
		c.noticeSeq++
		seq = c.noticeSeq
		c.notice = text
		return true
	})

	t := c.sched.AfterFunc(c.noticeFor, func() { c.clearNotice(seq) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.noticeSeq != seq || c.notice == "" {
		t.Stop()
		return
	}
	c.noticeTimer = t
}

func (c *Controller) clearNotice(seq uint64) {
	c.update(func() bool {
		if c.noticeSeq != seq || c.notice == "" {
			return false
		}
		c.notice = ""
		c.noticeTimer = nil
		return true
	})
}

// Reset starts a new conversation: pending timers are cancelled and the
// records are replaced by the welcome record. An in-flight submission is
// superseded and its outcome discarded. Reset is idempotent.
func (c *Controller) Reset() {
	c.update(func() bool {
		changed := c.pending || c.notice != "" || !slices.Equal(c.messages, aivae.DefaultMessages())
		c.replaceLocked(aivae.DefaultMessages())
		return changed
	})
	c.log.Debug("conversation_reset")
}

// Restore replaces the records with msgs, as when loading a transcript.
// Placeholders are dropped and an empty sequence becomes the welcome record.
func (c *Controller) Restore(msgs []aivae.Message) {
	c.update(func() bool {
		c.replaceLocked(aivae.Rehydrate(slices.Clone(msgs)))
		return true
	})
}

// Close stops all timers. Timers that fire afterwards do nothing and no
// further snapshots are published.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimersLocked()
	c.closed = true
	c.subs = nil
}

func (c *Controller) replaceLocked(msgs []aivae.Message) {
	c.stopTimersLocked()
	c.gen++
	c.messages = msgs
	c.notice = ""
	c.noticeSeq++
	c.pending = false
}

func (c *Controller) stopTimersLocked() {
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
		c.noticeTimer = nil
	}
}

// update applies fn under the lock. When fn reports a change, the new state
// is published to subscribers after the lock is released.
func (c *Controller) update(fn func() bool) bool {
	c.mu.Lock()
	if !fn() {
		c.mu.Unlock()
		return false
	}
	c.version++
	c.updatedAt = c.now()
	snap := c.snapshotLocked()
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
	return true
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version:  c.version,
		Messages: slices.Clone(c.messages),
		Notice:   c.notice,
		Pending:  c.pending,
	}
}

func (c *Controller) indexOf(id aivae.MessageID) int {
	return slices.IndexFunc(c.messages, func(m aivae.Message) bool { return m.ID == id })
}
