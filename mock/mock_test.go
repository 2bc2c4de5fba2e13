package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pharmbotai/aivae"
	"github.com/pharmbotai/aivae/chat"
	"github.com/pharmbotai/aivae/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryService_SubmitQuery(t *testing.T) {
	t.Parallel()

	t.Run("delegates to SubmitQueryFn", func(t *testing.T) {
		t.Parallel()
		want := aivae.QueryResponse{Status: aivae.StatusSuccess, Response: "Take with food."}
		s := mock.QueryService{
			SubmitQueryFn: func(ctx context.Context, token, question string) (aivae.QueryResponse, error) {
				assert.Equal(t, "tok", token)
				assert.Equal(t, "ibuprofen?", question)
				return want, nil
			},
		}
		got, err := s.SubmitQuery(context.Background(), "tok", "ibuprofen?")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("panics when SubmitQueryFn not set", func(t *testing.T) {
		t.Parallel()
		s := mock.QueryService{}
		assert.Panics(t, func() {
			_, _ = s.SubmitQuery(context.Background(), "", "")
		})
	})
}

func TestQueryService_History(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("boom")
	s := mock.QueryService{
		HistoryFn: func(ctx context.Context, token string) ([]aivae.HistoryEntry, error) {
			return nil, wantErr
		},
	}
	_, err := s.History(context.Background(), "tok")
	assert.ErrorIs(t, err, wantErr)
}

func TestPreferenceStore(t *testing.T) {
	t.Parallel()
	var saved aivae.Preferences
	s := mock.PreferenceStore{
		LoadFn: func() (aivae.Preferences, error) { return aivae.Preferences{Token: "tok"}, nil },
		SaveFn: func(p aivae.Preferences) error { saved = p; return nil },
	}
	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", p.Token)
	require.NoError(t, s.Save(aivae.Preferences{Onboarded: true}))
	assert.True(t, saved.Onboarded)
}

func TestScheduler_AfterFunc(t *testing.T) {
	t.Parallel()
	var gotDelay time.Duration
	timer := &mock.Timer{StopFn: func() bool { return true }}
	s := mock.Scheduler{
		AfterFuncFn: func(d time.Duration, f func()) chat.Timer {
			gotDelay = d
			f()
			return timer
		},
	}
	called := false
	got := s.AfterFunc(time.Second, func() { called = true })
	assert.True(t, called)
	assert.Equal(t, time.Second, gotDelay)
	assert.True(t, got.Stop())
}
