package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/pharmbotai/aivae"
	"github.com/pharmbotai/aivae/goldmark"
	"github.com/pharmbotai/aivae/json"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

const previewWidth = 60

func newHistoryCmd(a *app) *cobra.Command {
	var (
		filter string
		show   string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past questions",
		Long: `List the questions you asked before, newest as returned by the server.

With --filter the list is narrowed by a fuzzy match on the question. With
--show the full exchange with the given ID is printed.`,
		Args: cobra.NoArgs,
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
			entries, err := e.client.History(cmd.Context(), token)
			if err != nil {
				return fmt.Errorf("history: %w", describe(err))
			}

			out := cmd.OutOrStdout()
			if show != "" {
				for _, entry := range entries {
					if entry.ID == show {
						fmt.Fprintf(out, "> %s\n\n%s\n", entry.Query,
							goldmark.RenderText(entry.Response, goldmark.DefaultWidth, aivae.DefaultTheme()))
						return nil
					}
				}
				return fmt.Errorf("history entry %q not found", show)
			}

			entries = filterEntries(entries, filter)
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history found.")
				return nil
			}

			now := a.now()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tASKED\tQUESTION")
			for _, entry := range entries {
				asked := "-"
				if !entry.CreatedAt.IsZero() {
					asked = humanize.RelTime(entry.CreatedAt, now, "ago", "from now")
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", entry.ID, asked, preview(entry.Query))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Fuzzy filter on the question text")
	cmd.Flags().StringVar(&show, "show", "", "Print the full exchange with this ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of entries (0 for all)")
	return cmd
}

// filterEntries returns the entries whose question fuzzily matches pattern,
// best match first. An empty pattern keeps every entry in order.
func filterEntries(entries []aivae.HistoryEntry, pattern string) []aivae.HistoryEntry {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return entries
	}
	queries := make([]string, len(entries))
	for i, e := range entries {
		queries[i] = e.Query
	}
	matches := fuzzy.Find(pattern, queries)
	out := make([]aivae.HistoryEntry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}

// preview collapses whitespace and truncates s to previewWidth columns.
func preview(s string) string {
	return runewidth.Truncate(strings.Join(strings.Fields(s), " "), previewWidth, "…")
}

func newSessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved transcripts",
		Long: `List the transcripts saved by the chat, most recently updated first.
Resume one with "aivae chat --session <id>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.close()

			sessions, err := json.List(e.cfg.SessionDir)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No saved sessions.")
				return nil
			}

			now := a.now()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tUPDATED\tMESSAGES\tFIRST QUESTION")
			for _, s := range sessions {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					s.ID,
					humanize.RelTime(s.UpdatedAt, now, "ago", "from now"),
					len(s.Messages),
					preview(firstQuestion(s)),
				)
			}
			return w.Flush()
		},
	}
}

func firstQuestion(s aivae.Session) string {
	for _, m := range s.Messages {
		if m.Sender == aivae.SenderUser {
			return m.Text
		}
	}
	return ""
}
