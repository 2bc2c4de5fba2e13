package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pharmbotai/aivae"
	"github.com/pharmbotai/aivae/chat"
	"github.com/pharmbotai/aivae/goldmark"
	"github.com/pharmbotai/aivae/reveal"
	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	var (
		rich     bool
		width    int
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer",
		Long: `Ask one question and print the answer.

The answer is typed out character by character. With --rich it is printed
at once as structured text instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.close()

			token, _, err := a.session(e)
			if err != nil {
				return err
			}

			ctrl := chat.New(e.client, token, chat.WithLogger(e.log))
			defer ctrl.Close()

			var (
				mu     sync.Mutex
				notice string
			)
			cancel := ctrl.Subscribe(func(s chat.Snapshot) {
				if s.Notice == "" {
					return
				}
				mu.Lock()
				notice = s.Notice
				mu.Unlock()
			})
			defer cancel()

			ctrl.Submit(cmd.Context(), strings.Join(args, " "))
			msgs := ctrl.Messages()
			answer := msgs[len(msgs)-1]

			out := cmd.OutOrStdout()
			if rich {
				_, err = fmt.Fprintln(out, goldmark.RenderText(answer.Text, width, aivae.DefaultTheme()))
			} else {
				err = typeOut(cmd, out, answer.Text, interval)
			}
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if notice != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), notice)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rich, "rich", false, "Print the answer as structured text")
	cmd.Flags().IntVar(&width, "width", goldmark.DefaultWidth, "Wrap width for --rich")
	cmd.Flags().DurationVar(&interval, "interval", reveal.DefaultInterval, "Delay between typed characters")
	return cmd
}

// typeOut writes text to w one character at a time. Only the newly
// revealed suffix is written on each step.
func typeOut(cmd *cobra.Command, w io.Writer, text string, interval time.Duration) error {
	var (
		shown int
		werr  error
	)
	err := reveal.New(text).Run(cmd.Context(), interval, func(prefix string) {
		if werr != nil {
			return
		}
		_, werr = io.WriteString(w, prefix[shown:])
		shown = len(prefix)
	})
	if werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}
