package aivae_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pharmbotai/aivae"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("literal 400 is off topic", func(t *testing.T) {
		t.Parallel()
		got := aivae.Classify(errors.New("400"))
		assert.Equal(t, aivae.CategoryOffTopic, got.Category)
		assert.Equal(t, aivae.OffTopicText, got.Text)
	})

	t.Run("server message 400 is off topic", func(t *testing.T) {
		t.Parallel()
		got := aivae.Classify(&aivae.QueryError{StatusCode: 400, ServerMessage: "400"})
		assert.Equal(t, aivae.CategoryOffTopic, got.Category)
	})

	t.Run("nested server message wins", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("submit: %w", &aivae.QueryError{StatusCode: 500, ServerMessage: "Model unavailable"})
		got := aivae.Classify(err)
		assert.Equal(t, aivae.CategoryServerMessage, got.Category)
		assert.Equal(t, "Model unavailable", got.Text)
	})

	t.Run("plain error message is a client message", func(t *testing.T) {
		t.Parallel()
		got := aivae.Classify(errors.New("Network down"))
		assert.Equal(t, aivae.CategoryClientMessage, got.Category)
		assert.Equal(t, "Network down", got.Text)
	})

	t.Run("transport failure without server payload is a client message", func(t *testing.T) {
		t.Parallel()
		got := aivae.Classify(&aivae.QueryError{Err: context.DeadlineExceeded})
		assert.Equal(t, aivae.CategoryClientMessage, got.Category)
		assert.Equal(t, "context deadline exceeded", got.Text)
	})

	t.Run("unexpected response structure is a client message", func(t *testing.T) {
		t.Parallel()
		got := aivae.Classify(aivae.ErrUnexpectedResponse)
		assert.Equal(t, aivae.CategoryClientMessage, got.Category)
		assert.Equal(t, "Unexpected response structure", got.Text)
	})

	t.Run("error without message is unknown", func(t *testing.T) {
		t.Parallel()
		got := aivae.Classify(errors.New(""))
		assert.Equal(t, aivae.CategoryUnknown, got.Category)
		assert.Equal(t, aivae.UnknownErrorText, got.Text)
	})

	t.Run("nil error is unknown", func(t *testing.T) {
		t.Parallel()
		got := aivae.Classify(nil)
		assert.Equal(t, aivae.CategoryUnknown, got.Category)
	})

	t.Run("typed nil query error does not panic", func(t *testing.T) {
		t.Parallel()
		var qe *aivae.QueryError
		assert.NotPanics(t, func() {
			got := aivae.Classify(qe)
			assert.Equal(t, aivae.CategoryUnknown, got.Category)
		})
	})
}

func TestCategory_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "off_topic", aivae.CategoryOffTopic.String())
	assert.Equal(t, "server_message", aivae.CategoryServerMessage.String())
	assert.Equal(t, "client_message", aivae.CategoryClientMessage.String())
	assert.Equal(t, "unknown", aivae.CategoryUnknown.String())
}

func TestQueryError(t *testing.T) {
	t.Parallel()

	t.Run("unwraps to transport error", func(t *testing.T) {
		t.Parallel()
		err := &aivae.QueryError{StatusCode: 401, ServerMessage: "Invalid token", Err: aivae.ErrUnauthorized}
		assert.ErrorIs(t, err, aivae.ErrUnauthorized)
		assert.Equal(t, "Invalid token", err.Error())
	})

	t.Run("status code only", func(t *testing.T) {
		t.Parallel()
		err := &aivae.QueryError{StatusCode: 502}
		assert.Equal(t, "HTTP 502", err.Error())
	})
}
