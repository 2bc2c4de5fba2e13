package pharmbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pharmbotai/aivae"
	"github.com/tidwall/gjson"
)

// Interface compliance check.
var _ aivae.QueryService = (*Client)(nil)

// Client talks to the pharmacy assistant API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// New creates a [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token string
	User  aivae.User
}

// SubmitQuery asks the assistant a question. The answer is carried in
// data.response of a 2xx payload, which is returned as is; the caller decides
// whether it is well formed.
func (c *Client) SubmitQuery(ctx context.Context, token, question string) (aivae.QueryResponse, error) {
	body, err := c.post(ctx, submitPath, token, submitRequest{Question: question})
	if err != nil {
		return aivae.QueryResponse{}, err
	}
	res := gjson.ParseBytes(body)
	return aivae.QueryResponse{
		Status:   res.Get("status").String(),
		Response: sanitize(res.Get("data.response").String()),
		Message:  sanitize(res.Get("message").String()),
	}, nil
}

// History returns the past exchanges of the token's user, in server order.
func (c *Client) History(ctx context.Context, token string) ([]aivae.HistoryEntry, error) {
	body, err := c.post(ctx, historyPath, token, struct{}{})
	if err != nil {
		return nil, err
	}
	res := gjson.ParseBytes(body)
	if res.Get("status").String() != aivae.StatusSuccess {
		if msg := sanitize(res.Get("message").String()); msg != "" {
			return nil, &aivae.QueryError{ServerMessage: msg}
		}
		return nil, aivae.ErrUnexpectedResponse
	}

	data := res.Get("data").Array()
	entries := make([]aivae.HistoryEntry, 0, len(data))
	for _, item := range data {
		entries = append(entries, parseHistoryEntry(item))
	}
	return entries, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	body, err := c.post(ctx, loginPath, "", loginRequest{Username: username, Password: password})
	if err != nil {
		return LoginResult{}, err
	}
	res := gjson.ParseBytes(body)
	if !res.Get("success").Bool() || !res.Get("data").Exists() {
		return LoginResult{}, aivae.ErrInvalidLogin
	}
	token := res.Get("data.token").String()
	if token == "" {
		return LoginResult{}, fmt.Errorf("%w: missing token", aivae.ErrInvalidLogin)
	}
	return LoginResult{Token: token, User: parseUser(res.Get("data.user"))}, nil
}

// Logout ends the token's server session.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.post(ctx, logoutPath, token, struct{}{})
	return err
}

// post sends payload as JSON and returns the body of a 2xx response.
func (c *Client) post(ctx context.Context, path, token string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("pharmbot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("pharmbot: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &aivae.QueryError{Err: fmt.Errorf("%w: %w", aivae.ErrNoResponse, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &aivae.QueryError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", aivae.ErrNoResponse, err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseHTTPError(resp.StatusCode, body)
	}
	return body, nil
}

var errAPI = errors.New("API Error")

// parseHTTPError maps a non-2xx response to a *aivae.QueryError. The server
// explains failures in a top-level "message" field.
func parseHTTPError(status int, body []byte) error {
	qe := &aivae.QueryError{StatusCode: status, Err: errAPI}
	if gjson.ValidBytes(body) {
		qe.ServerMessage = sanitize(gjson.GetBytes(body, "message").String())
	}
	if status == http.StatusUnauthorized {
		qe.Err = aivae.ErrUnauthorized
	}
	return qe
}

func parseHistoryEntry(item gjson.Result) aivae.HistoryEntry {
	e := aivae.HistoryEntry{
		ID:       item.Get("id").String(),
		Query:    sanitize(item.Get("user_query").String()),
		Response: sanitize(item.Get("ai_response").String()),
		User:     parseUser(item.Get("user")),
		Pharmacy: aivae.Pharmacy{
			ID:   item.Get("pharmacy.id").String(),
			Name: item.Get("pharmacy.name").String(),
		},
	}
	if t, err := time.Parse(time.RFC3339, item.Get("created_at").String()); err == nil {
		e.CreatedAt = t
	}
	return e
}

func parseUser(u gjson.Result) aivae.User {
	return aivae.User{
		ID:       u.Get("id").String(),
		Username: u.Get("username").String(),
		Role:     u.Get("role").String(),
	}
}
