package aivae

import "time"

// Sender identifies who authored a message record.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// MessageID is the stable identifier assigned to a record at creation.
// Timers and UI state are keyed by it rather than by message text.
type MessageID string

// WelcomeID is the fixed identifier of the default welcome record, so that
// repeated resets produce identical conversation state.
const WelcomeID MessageID = "welcome"

// WelcomeText is the greeting that seeds every new conversation.
const WelcomeText = "Hello! I'm your pharmacy AI assistant. I can help you with medication information, " +
	"compliance checks, and general pharmacy-related questions. How can I assist you today?"

// Message is a single record in the conversation.
//
// Thinking marks the transient placeholder shown while a response is
// pending; a thinking record never has rendered content. RichText selects
// structured rendering (true) over the typed reveal of plain text (false).
type Message struct {
	ID        MessageID
	Sender    Sender
	Text      string
	Thinking  bool
	RichText  bool
	CreatedAt time.Time
}

// Welcome returns the default welcome record.
func Welcome() Message {
	return Message{
		ID:     WelcomeID,
		Sender: SenderBot,
		Text:   WelcomeText,
	}
}

// DefaultMessages returns the conversation a fresh session starts with.
func DefaultMessages() []Message {
	return []Message{Welcome()}
}

// Rehydrate normalizes an externally supplied record sequence. Thinking
// placeholders are dropped and an empty result becomes the default
// conversation; empty history is never a valid state.
func Rehydrate(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Thinking {
			continue
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return DefaultMessages()
	}
	return out
}
