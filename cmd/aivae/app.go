package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pharmbotai/aivae"
	bt "github.com/pharmbotai/aivae/bubbletea"
	"github.com/pharmbotai/aivae/cleanenv"
	"github.com/pharmbotai/aivae/jwt"
	"github.com/pharmbotai/aivae/pharmbot"
	"github.com/pharmbotai/aivae/toml"
	aivaezap "github.com/pharmbotai/aivae/zap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// apiClient is the remote API as used by the commands.
type apiClient interface {
	aivae.QueryService
	Login(ctx context.Context, username, password string) (pharmbot.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

var _ apiClient = (*pharmbot.Client)(nil)

// app holds the process-level dependencies shared by all commands.
type app struct {
	home      string
	newClient func(cfg aivae.Config) apiClient
	runTUI    func(ctx context.Context, m bt.Model) error
	now       func() time.Time

	// Global flags.
	configPath string
	token      string
}

func newPharmbotClient(cfg aivae.Config) apiClient {
	return pharmbot.New(
		pharmbot.WithBaseURL(cfg.APIBaseURL),
		pharmbot.WithTimeout(cfg.Timeout),
	)
}

// env is the per-invocation state built from the configuration.
type env struct {
	cfg    aivae.Config
	log    *zap.Logger
	prefs  *toml.Store
	client apiClient
}

// open loads the configuration and builds the logger, the preference store
// and the API client. Call close when done.
func (a *app) open() (*env, error) {
	path := a.configPath
	if path == "" {
		path = cleanenv.DefaultPath(a.home)
	}
	cfg, err := cleanenv.Load(path, a.home)
	if err != nil {
		return nil, err
	}

	log, err := aivaezap.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		log:    log,
		prefs:  toml.New(cfg.PrefsPath),
		client: a.newClient(cfg),
	}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
}

// session resolves the token to use: the --token flag, then AIVAE_TOKEN,
// then the stored preferences. The identity is decoded for display only; a
// token that cannot be decoded is still sent to the server.
func (a *app) session(e *env) (string, aivae.Identity, error) {
	token := a.token
	if token == "" {
		token = e.cfg.Token
	}
	if token == "" {
		prefs, err := e.prefs.Load()
		if err != nil {
			return "", aivae.Identity{}, err
		}
		token = prefs.Token
	}
	if token == "" {
		return "", aivae.Identity{}, aivae.ErrNoToken
	}

	id, err := jwt.Inspect(token)
	if err != nil {
		e.log.Warn("token_unreadable", zap.Error(err))
		return token, aivae.Identity{}, nil
	}
	if id.Expired(a.now()) {
		return "", aivae.Identity{}, aivae.ErrTokenExpired
	}
	return token, id, nil
}

// describe returns a message for err suited to the terminal. Query failures
// are shown the way the chat shows them.
func describe(err error) error {
	var qe *aivae.QueryError
	if errors.As(err, &qe) {
		return errors.New(aivae.Classify(err).Text)
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	chatCmd := newChatCmd(a)
	root := &cobra.Command{
		Use:   "aivae",
		Short: "Terminal client for the AIVAe pharmacy assistant",
		Long: `aivae answers medication, compliance and general pharmacy questions.

Run without a command to start the interactive chat.

Examples:
  aivae login                          Sign in
  aivae                                Start the chat
  aivae ask "Can I take ibuprofen?"    Ask a single question
  aivae history --filter aspirin       Search past questions`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd, chatOptions{save: true})
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML or TOML config file")
	root.PersistentFlags().StringVar(&a.token, "token", "", "Session token (overrides AIVAE_TOKEN and the stored token)")

	root.AddCommand(chatCmd)
	root.AddCommand(newAskCmd(a))
	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newLogoutCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newSessionsCmd(a))
	root.AddCommand(newConfigCmd())
	return root
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Describe the environment variables read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := cleanenv.Usage()
			if err != nil {
				return fmt.Errorf("describe config: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), usage)
			return err
		},
	}
}
