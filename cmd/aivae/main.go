// Command aivae is a terminal client for the AIVAe pharmacy assistant.
//
// Usage:
//
//	aivae [flags]                 Start the chat TUI
//	aivae ask <question>          Ask one question and print the answer
//	aivae login                   Sign in and store the session token
//	aivae logout                  Forget the stored session token
//	aivae history                 List past questions
//	aivae sessions                List saved transcripts
//	aivae config                  Describe the environment variables read
//
// Global flags:
//
//	--config string   Path to a YAML or TOML config file (default: ~/.aivae/config.yaml)
//	--token string    Session token (overrides AIVAE_TOKEN and the stored token)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	bt "github.com/pharmbotai/aivae/bubbletea"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "aivae: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	a := &app{
		home:      home,
		newClient: newPharmbotClient,
		runTUI:    bt.Run,
		now:       time.Now,
	}
	return newRootCmd(a).ExecuteContext(ctx)
}
