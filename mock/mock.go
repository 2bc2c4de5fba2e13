// Package mock provides test doubles for aivae interfaces using function fields.
package mock

import (
	"context"
	"time"

	"github.com/pharmbotai/aivae"
	"github.com/pharmbotai/aivae/chat"
)

// Interface compliance checks.
var (
	_ aivae.QueryService    = (*QueryService)(nil)
	_ aivae.PreferenceStore = (*PreferenceStore)(nil)
	_ chat.Scheduler        = (*Scheduler)(nil)
	_ chat.Timer            = (*Timer)(nil)
)

// QueryService is a test double for aivae.QueryService.
// Set the function fields for the methods you need.
type QueryService struct {
	SubmitQueryFn func(ctx context.Context, token, question string) (aivae.QueryResponse, error)
	HistoryFn     func(ctx context.Context, token string) ([]aivae.HistoryEntry, error)
}

// SubmitQuery delegates to SubmitQueryFn.
func (s *QueryService) SubmitQuery(ctx context.Context, token, question string) (aivae.QueryResponse, error) {
	return s.SubmitQueryFn(ctx, token, question)
}

// History delegates to HistoryFn.
func (s *QueryService) History(ctx context.Context, token string) ([]aivae.HistoryEntry, error) {
	return s.HistoryFn(ctx, token)
}

// PreferenceStore is a test double for aivae.PreferenceStore.
type PreferenceStore struct {
	LoadFn func() (aivae.Preferences, error)
	SaveFn func(aivae.Preferences) error
}

// Load delegates to LoadFn.
func (s *PreferenceStore) Load() (aivae.Preferences, error) {
	return s.LoadFn()
}

// Save delegates to SaveFn.
func (s *PreferenceStore) Save(p aivae.Preferences) error {
	return s.SaveFn(p)
}

// Scheduler is a test double for chat.Scheduler.
// Set AfterFuncFn before calling AfterFunc.
type Scheduler struct {
	AfterFuncFn func(d time.Duration, f func()) chat.Timer
}

// AfterFunc delegates to AfterFuncFn.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) chat.Timer {
	return s.AfterFuncFn(d, f)
}

// Timer is a test double for chat.Timer.
type Timer struct {
	StopFn func() bool
}

// Stop delegates to StopFn.
func (t *Timer) Stop() bool {
	return t.StopFn()
}
