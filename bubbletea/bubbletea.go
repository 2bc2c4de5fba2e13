// Package bubbletea provides a Bubble Tea TUI for the pharmacy assistant.
package bubbletea

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pharmbotai/aivae"
	"github.com/pharmbotai/aivae/chat"
)

// Conversation is the message lifecycle the TUI drives.
type Conversation interface {
	Submit(ctx context.Context, raw string)
	Reset()
	Restore(msgs []aivae.Message)
	Subscribe(fn func(chat.Snapshot)) (cancel func())
}

var _ Conversation = (*chat.Controller)(nil)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// SnapshotMsg delivers a published conversation state to the model.
type SnapshotMsg struct {
	Snapshot chat.Snapshot
}

// submitDoneMsg signals that submission seq has been handled.
type submitDoneMsg struct{ seq uint64 }

// snapshotBridge hands snapshots from controller goroutines to the Bubble
// Tea loop. Only the newest snapshot is kept: each one is the full state,
// so intermediate ones can be skipped.
type snapshotBridge struct {
	mu     sync.Mutex
	latest chat.Snapshot
	signal chan struct{}
}

func newSnapshotBridge() *snapshotBridge {
	return &snapshotBridge{signal: make(chan struct{}, 1)}
}

func (b *snapshotBridge) publish(s chat.Snapshot) {
	b.mu.Lock()
	if s.Version >= b.latest.Version {
		b.latest = s
	}
	b.mu.Unlock()
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// listen waits for the next snapshot.
func (b *snapshotBridge) listen() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		b.mu.Lock()
		defer b.mu.Unlock()
		return SnapshotMsg{Snapshot: b.latest}
	}
}
