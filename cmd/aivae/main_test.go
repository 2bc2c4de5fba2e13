package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/pharmbotai/aivae"
	bt "github.com/pharmbotai/aivae/bubbletea"
	"github.com/pharmbotai/aivae/cleanenv"
	"github.com/pharmbotai/aivae/json"
	"github.com/pharmbotai/aivae/mock"
	"github.com/pharmbotai/aivae/pharmbot"
	"github.com/pharmbotai/aivae/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 4, 21, 12, 0, 0, 0, time.UTC)

// fakeClient adds the auth calls to the mock query service.
type fakeClient struct {
	mock.QueryService
	LoginFn  func(ctx context.Context, username, password string) (pharmbot.LoginResult, error)
	LogoutFn func(ctx context.Context, token string) error
}

func (c *fakeClient) Login(ctx context.Context, username, password string) (pharmbot.LoginResult, error) {
	return c.LoginFn(ctx, username, password)
}

// Logout delegates to LogoutFn; a nil LogoutFn succeeds.
func (c *fakeClient) Logout(ctx context.Context, token string) error {
	if c.LogoutFn == nil {
		return nil
	}
	return c.LogoutFn(ctx, token)
}

func newTestApp(t *testing.T, client apiClient) *app {
	t.Helper()
	return &app{
		home:      t.TempDir(),
		newClient: func(aivae.Config) apiClient { return client },
		runTUI:    func(context.Context, bt.Model) error { return nil },
		now:       func() time.Time { return testNow },
	}
}

func execute(t *testing.T, a *app, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd(a)
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func sign(t *testing.T, claims gojwt.MapClaims) string {
	t.Helper()
	s, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return s
}

func validToken(t *testing.T) string {
	t.Helper()
	return sign(t, gojwt.MapClaims{
		"id":       "u1",
		"username": "jane.admin",
		"role":     "admin",
		"exp":      testNow.Add(time.Hour).Unix(),
	})
}

func prefsStore(a *app) *toml.Store {
	return toml.New(filepath.Join(a.home, cleanenv.DirName, "preferences.toml"))
}

func sessionDir(a *app) string {
	return filepath.Join(a.home, cleanenv.DirName, "sessions")
}

func storeToken(t *testing.T, a *app, token string) {
	t.Helper()
	require.NoError(t, prefsStore(a).Save(aivae.Preferences{Token: token, Onboarded: true}))
}

func answering(text string) *fakeClient {
	return &fakeClient{QueryService: mock.QueryService{
		SubmitQueryFn: func(context.Context, string, string) (aivae.QueryResponse, error) {
			return aivae.QueryResponse{Status: aivae.StatusSuccess, Response: text}, nil
		},
	}}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("stores the token", func(t *testing.T) {
		t.Parallel()

		token := validToken(t)
		client := &fakeClient{LoginFn: func(_ context.Context, username, password string) (pharmbot.LoginResult, error) {
			assert.Equal(t, "jane.admin", username)
			assert.Equal(t, "secret", password)
			return pharmbot.LoginResult{Token: token, User: aivae.User{Username: "jane.admin"}}, nil
		}}
		a := newTestApp(t, client)

		stdout, _, err := execute(t, a, "jane.admin\nsecret\n", "login")
		require.NoError(t, err)

		assert.Contains(t, stdout, "Username: ")
		assert.Contains(t, stdout, "Password: ")
		assert.Contains(t, stdout, "Logged in as jane.admin (admin)")
		prefs, err := prefsStore(a).Load()
		require.NoError(t, err)
		assert.Equal(t, token, prefs.Token)
		assert.True(t, prefs.Onboarded)
	})

	t.Run("username flag skips the prompt", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{LoginFn: func(_ context.Context, username, password string) (pharmbot.LoginResult, error) {
			assert.Equal(t, "jane.admin", username)
			assert.Equal(t, "secret", password)
			return pharmbot.LoginResult{Token: "opaque", User: aivae.User{Username: "jane.admin"}}, nil
		}}
		a := newTestApp(t, client)

		stdout, _, err := execute(t, a, "secret\n", "login", "-u", "jane.admin")
		require.NoError(t, err)

		assert.NotContains(t, stdout, "Username: ")
		assert.Contains(t, stdout, "Logged in as jane.admin")
	})

	t.Run("keeps other preferences", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{LoginFn: func(context.Context, string, string) (pharmbot.LoginResult, error) {
			return pharmbot.LoginResult{Token: "new"}, nil
		}}
		a := newTestApp(t, client)
		require.NoError(t, prefsStore(a).Save(aivae.Preferences{Token: "old", TwoFactor: true}))

		_, _, err := execute(t, a, "u\np\n", "login")
		require.NoError(t, err)

		prefs, err := prefsStore(a).Load()
		require.NoError(t, err)
		assert.Equal(t, "new", prefs.Token)
		assert.True(t, prefs.TwoFactor)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{LoginFn: func(context.Context, string, string) (pharmbot.LoginResult, error) {
			return pharmbot.LoginResult{}, &aivae.QueryError{
				StatusCode:    401,
				ServerMessage: "Invalid credentials",
				Err:           aivae.ErrUnauthorized,
			}
		}}
		a := newTestApp(t, client)

		_, _, err := execute(t, a, "u\nwrong\n", "login")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid credentials")
		prefs, err := prefsStore(a).Load()
		require.NoError(t, err)
		assert.Empty(t, prefs.Token)
	})

	t.Run("empty password", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, &fakeClient{})

		_, _, err := execute(t, a, "jane\n\n", "login")
		assert.EqualError(t, err, "username and password are required")
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("ends the server session and clears the token", func(t *testing.T) {
		t.Parallel()

		var ended []string
		a := newTestApp(t, &fakeClient{LogoutFn: func(_ context.Context, token string) error {
			ended = append(ended, token)
			return nil
		}})
		storeToken(t, a, "tok")

		stdout, _, err := execute(t, a, "", "logout")
		require.NoError(t, err)

		assert.Contains(t, stdout, "Logged out")
		prefs, err := prefsStore(a).Load()
		require.NoError(t, err)
		assert.Empty(t, prefs.Token)
		assert.True(t, prefs.Onboarded)
		assert.Equal(t, []string{"tok"}, ended)
	})

	t.Run("clears the token when the server call fails", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, &fakeClient{LogoutFn: func(context.Context, string) error {
			return &aivae.QueryError{StatusCode: 500, ServerMessage: "Logout failed"}
		}})
		storeToken(t, a, "tok")

		stdout, _, err := execute(t, a, "", "logout")
		require.NoError(t, err)

		assert.Contains(t, stdout, "Logged out")
		prefs, err := prefsStore(a).Load()
		require.NoError(t, err)
		assert.Empty(t, prefs.Token)
	})

	t.Run("not logged in", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, &fakeClient{LogoutFn: func(context.Context, string) error {
			t.Error("logout request sent without a token")
			return nil
		}})

		stdout, _, err := execute(t, a, "", "logout")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Not logged in")
	})
}

func TestAsk(t *testing.T) {
	t.Parallel()

	t.Run("types out the answer", func(t *testing.T) {
		t.Parallel()

		token := validToken(t)
		client := &fakeClient{QueryService: mock.QueryService{
			SubmitQueryFn: func(_ context.Context, gotToken, question string) (aivae.QueryResponse, error) {
				assert.Equal(t, token, gotToken)
				assert.Equal(t, "Can I take ibuprofen?", question)
				return aivae.QueryResponse{Status: aivae.StatusSuccess, Response: "Take it with food."}, nil
			},
		}}
		a := newTestApp(t, client)
		storeToken(t, a, token)

		stdout, _, err := execute(t, a, "", "ask", "--interval", "1ms", "Can", "I", "take", "ibuprofen?")
		require.NoError(t, err)
		assert.Equal(t, "Take it with food.\n", stdout)
	})

	t.Run("token flag overrides the stored token", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{QueryService: mock.QueryService{
			SubmitQueryFn: func(_ context.Context, token, _ string) (aivae.QueryResponse, error) {
				assert.Equal(t, "flag-token", token)
				return aivae.QueryResponse{Status: aivae.StatusSuccess, Response: "ok"}, nil
			},
		}}
		a := newTestApp(t, client)
		storeToken(t, a, "stored-token")

		stdout, _, err := execute(t, a, "", "--token", "flag-token", "ask", "--interval", "1ms", "q")
		require.NoError(t, err)
		assert.Equal(t, "ok\n", stdout)
	})

	t.Run("rich output", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("### Dosage\nTake **two** tablets."))
		storeToken(t, a, validToken(t))

		stdout, _, err := execute(t, a, "", "ask", "--rich", "q")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Dosage")
		assert.Contains(t, stdout, "two")
		assert.NotContains(t, stdout, "###")
	})

	t.Run("off-topic question prints the notice", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{QueryService: mock.QueryService{
			SubmitQueryFn: func(context.Context, string, string) (aivae.QueryResponse, error) {
				return aivae.QueryResponse{}, &aivae.QueryError{StatusCode: 400, ServerMessage: "400"}
			},
		}}
		a := newTestApp(t, client)
		storeToken(t, a, validToken(t))

		stdout, stderr, err := execute(t, a, "", "ask", "--interval", "1ms", "weather?")
		require.NoError(t, err)
		assert.Equal(t, aivae.OffTopicText+"\n", stdout)
		assert.Contains(t, stderr, aivae.OffTopicNotice)
	})

	t.Run("requires a token", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("unused"))

		_, _, err := execute(t, a, "", "ask", "q")
		assert.ErrorIs(t, err, aivae.ErrNoToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("unused"))
		storeToken(t, a, sign(t, gojwt.MapClaims{"username": "jane", "exp": testNow.Add(-time.Minute).Unix()}))

		_, _, err := execute(t, a, "", "ask", "q")
		assert.ErrorIs(t, err, aivae.ErrTokenExpired)
	})

	t.Run("opaque token is sent as is", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{QueryService: mock.QueryService{
			SubmitQueryFn: func(_ context.Context, token, _ string) (aivae.QueryResponse, error) {
				assert.Equal(t, "not-a-jwt", token)
				return aivae.QueryResponse{Status: aivae.StatusSuccess, Response: "ok"}, nil
			},
		}}
		a := newTestApp(t, client)
		storeToken(t, a, "not-a-jwt")

		_, _, err := execute(t, a, "", "ask", "--interval", "1ms", "q")
		require.NoError(t, err)
	})

	t.Run("requires a question", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("unused"))

		_, _, err := execute(t, a, "", "ask")
		assert.Error(t, err)
	})
}

func TestHistory(t *testing.T) {
	t.Parallel()

	entries := []aivae.HistoryEntry{
		{ID: "h1", Query: "Is aspirin safe?", Response: "### Aspirin\nGenerally **safe**.", CreatedAt: testNow.Add(-2 * time.Hour)},
		{ID: "h2", Query: "Ibuprofen dosage for adults", Response: "Up to 400mg.", CreatedAt: testNow.Add(-48 * time.Hour)},
	}
	withHistory := func(t *testing.T, entries []aivae.HistoryEntry, err error) *app {
		t.Helper()
		client := &fakeClient{QueryService: mock.QueryService{
			HistoryFn: func(context.Context, string) ([]aivae.HistoryEntry, error) { return entries, err },
		}}
		a := newTestApp(t, client)
		storeToken(t, a, validToken(t))
		return a
	}

	t.Run("lists entries with their age", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, withHistory(t, entries, nil), "", "history")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "QUESTION")
		assert.Contains(t, lines[1], "h1")
		assert.Contains(t, lines[1], "2 hours ago")
		assert.Contains(t, lines[1], "Is aspirin safe?")
		assert.Contains(t, lines[2], "2 days ago")
	})

	t.Run("filter narrows entries", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, withHistory(t, entries, nil), "", "history", "--filter", "ibu")
		require.NoError(t, err)

		assert.Contains(t, stdout, "Ibuprofen dosage")
		assert.NotContains(t, stdout, "aspirin")
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, withHistory(t, entries, nil), "", "history", "-n", "1")
		require.NoError(t, err)

		assert.Contains(t, stdout, "h1")
		assert.NotContains(t, stdout, "h2")
	})

	t.Run("show prints the rendered answer", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, withHistory(t, entries, nil), "", "history", "--show", "h1")
		require.NoError(t, err)

		assert.Contains(t, stdout, "> Is aspirin safe?")
		assert.Contains(t, stdout, "Generally")
		assert.NotContains(t, stdout, "###")
	})

	t.Run("show unknown entry", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, withHistory(t, entries, nil), "", "history", "--show", "nope")
		assert.EqualError(t, err, `history entry "nope" not found`)
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, withHistory(t, nil, nil), "", "history")
		require.NoError(t, err)
		assert.Contains(t, stdout, "No history found.")
	})

	t.Run("server failure shows its message", func(t *testing.T) {
		t.Parallel()

		a := withHistory(t, nil, &aivae.QueryError{StatusCode: 500, ServerMessage: "History unavailable"})

		_, _, err := execute(t, a, "", "history")
		assert.EqualError(t, err, "history: History unavailable")
	})
}

func TestSessions(t *testing.T) {
	t.Parallel()

	t.Run("lists saved transcripts newest first", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, &fakeClient{})
		older := aivae.Session{
			ID:        "older",
			Messages:  []aivae.Message{aivae.Welcome(), {ID: "u1", Sender: aivae.SenderUser, Text: "First question"}},
			CreatedAt: testNow.Add(-48 * time.Hour),
			UpdatedAt: testNow.Add(-24 * time.Hour),
		}
		newer := aivae.Session{
			ID:        "newer",
			Messages:  []aivae.Message{aivae.Welcome(), {ID: "u2", Sender: aivae.SenderUser, Text: "Second question"}},
			CreatedAt: testNow.Add(-time.Hour),
			UpdatedAt: testNow.Add(-time.Hour),
		}
		require.NoError(t, json.Save(json.Path(sessionDir(a), older.ID), older))
		require.NoError(t, json.Save(json.Path(sessionDir(a), newer.ID), newer))

		stdout, _, err := execute(t, a, "", "sessions")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "newer")
		assert.Contains(t, lines[1], "Second question")
		assert.Contains(t, lines[1], "1 hour ago")
		assert.Contains(t, lines[2], "older")
	})

	t.Run("none saved", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, newTestApp(t, &fakeClient{}), "", "sessions")
		require.NoError(t, err)
		assert.Contains(t, stdout, "No saved sessions.")
	})
}

// submitting returns a TUI runner that asks question through the model.
func submitting(t *testing.T, question string) func(context.Context, bt.Model) error {
	return func(_ context.Context, m bt.Model) error {
		updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		m = updated.(bt.Model)
		m.Input.SetValue(question)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.NotNil(t, cmd)
		cmd()
		return nil
	}
}

func TestChat(t *testing.T) {
	t.Parallel()

	t.Run("saves the transcript on exit", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("Generally safe."))
		a.runTUI = submitting(t, "Is aspirin safe?")
		storeToken(t, a, validToken(t))

		_, stderr, err := execute(t, a, "")
		require.NoError(t, err)

		sessions, err := json.List(sessionDir(a))
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		s := sessions[0]
		require.Len(t, s.Messages, 3)
		assert.Equal(t, aivae.WelcomeID, s.Messages[0].ID)
		assert.Equal(t, "Is aspirin safe?", s.Messages[1].Text)
		assert.Equal(t, "Generally safe.", s.Messages[2].Text)
		assert.Contains(t, stderr, "Session saved to "+json.Path(sessionDir(a), s.ID))
	})

	t.Run("no-save", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("Generally safe."))
		a.runTUI = submitting(t, "Is aspirin safe?")
		storeToken(t, a, validToken(t))

		_, _, err := execute(t, a, "", "chat", "--no-save")
		require.NoError(t, err)

		_, err = os.Stat(sessionDir(a))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("conversation without questions is not saved", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("unused"))
		storeToken(t, a, validToken(t))

		_, stderr, err := execute(t, a, "", "chat")
		require.NoError(t, err)

		assert.NotContains(t, stderr, "Session saved")
		sessions, err := json.List(sessionDir(a))
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("resumes a saved transcript", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("Up to 400mg."))
		a.runTUI = submitting(t, "And ibuprofen?")
		storeToken(t, a, validToken(t))
		saved := aivae.Session{
			ID: "s1",
			Messages: []aivae.Message{
				aivae.Welcome(),
				{ID: "u1", Sender: aivae.SenderUser, Text: "Is aspirin safe?"},
				{ID: "b1", Sender: aivae.SenderBot, Text: "Generally safe.", RichText: true},
			},
			CreatedAt: testNow.Add(-time.Hour),
			UpdatedAt: testNow.Add(-time.Hour),
		}
		require.NoError(t, json.Save(json.Path(sessionDir(a), "s1"), saved))

		_, _, err := execute(t, a, "", "chat", "--session", "s1")
		require.NoError(t, err)

		s, err := json.Load(json.Path(sessionDir(a), "s1"))
		require.NoError(t, err)
		require.Len(t, s.Messages, 5)
		assert.Equal(t, "Is aspirin safe?", s.Messages[1].Text)
		assert.Equal(t, "And ibuprofen?", s.Messages[3].Text)
		assert.Equal(t, "Up to 400mg.", s.Messages[4].Text)
		assert.True(t, s.CreatedAt.Equal(saved.CreatedAt))
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("unused"))
		storeToken(t, a, validToken(t))

		_, _, err := execute(t, a, "", "chat", "--session", "missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load session")
	})

	t.Run("requires a token", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, newTestApp(t, &fakeClient{}), "")
		assert.ErrorIs(t, err, aivae.ErrNoToken)
	})

	t.Run("TUI failure is reported", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, &fakeClient{})
		a.runTUI = func(context.Context, bt.Model) error { return errors.New("no terminal") }
		storeToken(t, a, validToken(t))

		_, _, err := execute(t, a, "")
		assert.EqualError(t, err, "TUI: no terminal")
	})

	t.Run("introduction is shown once", func(t *testing.T) {
		t.Parallel()

		a := newTestApp(t, answering("unused"))
		require.NoError(t, prefsStore(a).Save(aivae.Preferences{Token: validToken(t)}))

		_, stderr, err := execute(t, a, "", "chat")
		require.NoError(t, err)
		assert.Contains(t, stderr, "Welcome to Your AI-Enabled Virtual Pharmacist")

		prefs, err := prefsStore(a).Load()
		require.NoError(t, err)
		assert.True(t, prefs.Onboarded)

		_, stderr, err = execute(t, a, "", "chat")
		require.NoError(t, err)
		assert.NotContains(t, stderr, "Welcome")
	})
}

func TestConfig(t *testing.T) {
	t.Parallel()

	t.Run("describes environment variables", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, newTestApp(t, &fakeClient{}), "", "config")
		require.NoError(t, err)
		assert.Contains(t, stdout, "AIVAE_API_URL")
		assert.Contains(t, stdout, "AIVAE_LOG_LEVEL")
	})

	t.Run("config file reaches the client", func(t *testing.T) {
		t.Parallel()

		var got aivae.Config
		client := answering("ok")
		a := newTestApp(t, client)
		a.newClient = func(cfg aivae.Config) apiClient {
			got = cfg
			return client
		}
		storeToken(t, a, validToken(t))
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api_url: https://staging.example.com/api\ntimeout: 5s\n"), 0o600))

		_, _, err := execute(t, a, "", "--config", path, "ask", "--interval", "1ms", "q")
		require.NoError(t, err)
		assert.Equal(t, "https://staging.example.com/api", got.APIBaseURL)
		assert.Equal(t, 5*time.Second, got.Timeout)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

		_, _, err := execute(t, newTestApp(t, &fakeClient{}), "", "--config", path, "sessions")
		assert.ErrorIs(t, err, aivae.ErrValidation)
	})
}
