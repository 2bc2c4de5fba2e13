package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pharmbotai/aivae/jwt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLoginCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Long: `Sign in with your AIVAe account. The username and password are read
from standard input; the returned session token is stored in the
preferences file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.close()

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if username == "" {
				if username, err = prompt(in, out, "Username: "); err != nil {
					return err
				}
			}
			password, err := prompt(in, out, "Password: ")
			if err != nil {
				return err
			}
			if username == "" || password == "" {
				return errors.New("username and password are required")
			}

			res, err := e.client.Login(cmd.Context(), username, password)
			if err != nil {
				e.log.Warn("login_failed", zap.String("username", username), zap.Error(err))
				return fmt.Errorf("login: %w", describe(err))
			}

			prefs, err := e.prefs.Load()
			if err != nil {
				return err
			}
			prefs.Token = res.Token
			prefs.Onboarded = true
			if err := e.prefs.Save(prefs); err != nil {
				return err
			}
			e.log.Info("login_succeeded", zap.String("username", username))

			name := res.User.Username
			if id, err := jwt.Inspect(res.Token); err == nil && id.Username != "" {
				name = id.String()
			}
			if name == "" {
				name = username
			}
			fmt.Fprintf(out, "Logged in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.close()

			prefs, err := e.prefs.Load()
			if err != nil {
				return err
			}
			if prefs.Token == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err := e.client.Logout(cmd.Context(), prefs.Token); err != nil {
				e.log.Warn("logout_request_failed", zap.Error(err))
			}
			prefs.Token = ""
			if err := e.prefs.Save(prefs); err != nil {
				return err
			}
			e.log.Info("logout")
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// prompt writes label and reads one line from in.
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
