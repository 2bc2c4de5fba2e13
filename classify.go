package aivae

import "errors"

// Category is the kind of failure the user is shown.
type Category int

const (
	// CategoryUnknown means no diagnostic information was available.
	CategoryUnknown Category = iota
	// CategoryOffTopic means the server rejected the query as unrelated to
	// pharmacy. The server signals it with the literal message "400".
	CategoryOffTopic
	// CategoryServerMessage means the server reported a readable reason.
	CategoryServerMessage
	// CategoryClientMessage means a local or transport failure with a message.
	CategoryClientMessage
)

func (c Category) String() string {
	switch c {
	case CategoryOffTopic:
		return "off_topic"
	case CategoryServerMessage:
		return "server_message"
	case CategoryClientMessage:
		return "client_message"
	default:
		return "unknown"
	}
}

const (
	// OffTopicText is shown in place of an off-topic rejection.
	OffTopicText = "⚠️ Your query seems unrelated to pharmacy topics. Please ask questions related to pharmacy, " +
		"such as medication usage, pharmacy protocols, or patient counseling."

	// OffTopicNotice is the transient notification raised for off-topic queries.
	OffTopicNotice = "Ask pharmacy related question only"

	// UnknownErrorText is shown when a failure carries no message at all.
	UnknownErrorText = "Sorry, something went wrong. Please try again."

	offTopicSignal = "400"
)

// Classification is what the user sees for a failed query.
type Classification struct {
	Category Category
	Text     string
}

// Classify maps a failure to the category and text shown to the user.
// It never panics and performs no I/O.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Category: CategoryUnknown, Text: UnknownErrorText}
	}
	msg := err.Error()
	if msg == offTopicSignal {
		return Classification{Category: CategoryOffTopic, Text: OffTopicText}
	}
	var qe *QueryError
	if errors.As(err, &qe) && qe != nil && qe.ServerMessage != "" {
		return Classification{Category: CategoryServerMessage, Text: qe.ServerMessage}
	}
	if msg != "" {
		return Classification{Category: CategoryClientMessage, Text: msg}
	}
	return Classification{Category: CategoryUnknown, Text: UnknownErrorText}
}
