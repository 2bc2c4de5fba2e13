package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pharmbotai/aivae"
	bt "github.com/pharmbotai/aivae/bubbletea"
	"github.com/pharmbotai/aivae/chat"
	"github.com/pharmbotai/aivae/json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const intro = `Welcome to Your AI-Enabled Virtual Pharmacist

AIVAe (pronounced 'AI-Va') is an Artificial Intelligence Virtual Assistant
in eHealth. Ask about medications, compliance or pharmacy operations.

Enter sends a question, Ctrl+O browses past questions, Ctrl+C quits.
`

type chatOptions struct {
	sessionID string
	save      bool
}

func newChatCmd(a *app) *cobra.Command {
	var (
		opts   chatOptions
		noSave bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive chat",
		Long: `Start the interactive chat.

Keys:
  Enter    send the question
  Ctrl+N   start a new conversation
  Ctrl+O   browse past questions
  Ctrl+Y   copy the last answer
  Ctrl+C   cancel a pending question, or quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.save = !noSave
			return a.runChat(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.sessionID, "session", "s", "", "ID of a saved transcript to resume")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not save the transcript on exit")
	return cmd
}

func (a *app) runChat(cmd *cobra.Command, opts chatOptions) error {
	e, err := a.open()
	if err != nil {
		return err
	}
	defer e.close()

	token, id, err := a.session(e)
	if err != nil {
		return err
	}

	if err := a.onboard(e, cmd.ErrOrStderr()); err != nil {
		return err
	}

	ctrlOpts := []chat.Option{chat.WithLogger(e.log)}
	if opts.sessionID != "" {
		s, err := json.Load(json.Path(e.cfg.SessionDir, opts.sessionID))
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		ctrlOpts = append(ctrlOpts, chat.WithSession(s))
	}
	ctrl := chat.New(e.client, token, ctrlOpts...)
	defer ctrl.Close()

	client := e.client
	history := func(ctx context.Context) ([]aivae.HistoryEntry, error) {
		return client.History(ctx, token)
	}
	m := bt.New(ctrl, aivae.DefaultTheme(),
		bt.WithHistory(history),
		bt.WithIdentity(id.String()),
	)

	e.log.Info("chat_started", zap.String("session_id", ctrl.Session().ID))
	if err := a.runTUI(cmd.Context(), m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	if !opts.save {
		return nil
	}
	s := ctrl.Session()
	if !hasExchange(s) {
		return nil
	}
	path := json.Path(e.cfg.SessionDir, s.ID)
	if err := json.Save(path, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	e.log.Info("session_saved", zap.String("path", path), zap.Int("messages", len(s.Messages)))
	fmt.Fprintf(cmd.ErrOrStderr(), "Session saved to %s\n", path)
	return nil
}

// onboard prints the introduction once per preferences file.
func (a *app) onboard(e *env, w io.Writer) error {
	prefs, err := e.prefs.Load()
	if err != nil {
		return err
	}
	if prefs.Onboarded {
		return nil
	}
	fmt.Fprintln(w, intro)
	prefs.Onboarded = true
	if err := e.prefs.Save(prefs); err != nil {
		return err
	}
	e.log.Info("onboarded")
	return nil
}

// hasExchange reports whether s holds at least one question.
func hasExchange(s aivae.Session) bool {
	for _, m := range s.Messages {
		if m.Sender == aivae.SenderUser {
			return true
		}
	}
	return false
}
