package aivae_test

import (
	"testing"
	"time"

	"github.com/pharmbotai/aivae"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcome(t *testing.T) {
	t.Parallel()

	w := aivae.Welcome()
	assert.Equal(t, aivae.WelcomeID, w.ID)
	assert.Equal(t, aivae.SenderBot, w.Sender)
	assert.Equal(t, aivae.WelcomeText, w.Text)
	assert.False(t, w.Thinking)
	assert.False(t, w.RichText)
	assert.Equal(t, aivae.DefaultMessages(), aivae.DefaultMessages())
}

func TestRehydrate(t *testing.T) {
	t.Parallel()

	t.Run("empty sequence becomes the welcome record", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, aivae.DefaultMessages(), aivae.Rehydrate(nil))
		assert.Equal(t, aivae.DefaultMessages(), aivae.Rehydrate([]aivae.Message{}))
	})

	t.Run("placeholders are dropped", func(t *testing.T) {
		t.Parallel()
		msgs := []aivae.Message{
			{ID: "u1", Sender: aivae.SenderUser, Text: "hi"},
			{ID: "p1", Sender: aivae.SenderBot, Thinking: true},
		}
		got := aivae.Rehydrate(msgs)
		require.Len(t, got, 1)
		assert.Equal(t, aivae.MessageID("u1"), got[0].ID)
	})

	t.Run("only placeholders becomes the welcome record", func(t *testing.T) {
		t.Parallel()
		got := aivae.Rehydrate([]aivae.Message{{ID: "p1", Sender: aivae.SenderBot, Thinking: true}})
		assert.Equal(t, aivae.DefaultMessages(), got)
	})
}

func TestBlockTypeSwitch_Exhaustive(t *testing.T) {
	t.Parallel()
	blocks := []aivae.Block{
		aivae.Heading{Text: "h"},
		aivae.Subheading{Text: "s"},
		aivae.Paragraph{Text: "p"},
		aivae.List{Kind: aivae.ListOrdered, Items: []string{"a"}},
	}
	for _, b := range blocks {
		switch b.(type) {
		case aivae.Heading:
		case aivae.Subheading:
		case aivae.Paragraph:
		case aivae.List:
		default:
			t.Fatalf("unexpected block type: %T", b)
		}
	}
	assert.Equal(t, "ordered", aivae.ListOrdered.String())
	assert.Equal(t, "unordered", aivae.ListUnordered.String())
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 21, 6, 0, 0, 0, time.UTC)

	t.Run("expired when expiry has passed", func(t *testing.T) {
		t.Parallel()
		id := aivae.Identity{Username: "jane.admin", ExpiresAt: now.Add(-time.Minute)}
		assert.True(t, id.Expired(now))
	})

	t.Run("unknown expiry never expires", func(t *testing.T) {
		t.Parallel()
		assert.False(t, aivae.Identity{Username: "jane.admin"}.Expired(now))
	})

	t.Run("string includes role", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "jane.admin (admin)", aivae.Identity{Username: "jane.admin", Role: "admin"}.String())
		assert.Equal(t, "jane", aivae.Identity{Username: "jane"}.String())
	})
}

func TestQueryResponse_Valid(t *testing.T) {
	t.Parallel()
	assert.True(t, aivae.QueryResponse{Status: "success", Response: "Take with food."}.Valid())
	assert.False(t, aivae.QueryResponse{Status: "success"}.Valid())
	assert.False(t, aivae.QueryResponse{Status: "error", Response: "x"}.Valid())
}
