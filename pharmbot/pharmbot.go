// Package pharmbot implements [aivae.QueryService] for the AIVAe pharmacy
// assistant HTTP API.
//
// Every endpoint is a JSON POST. Query, history and logout calls authenticate
// with a bearer token obtained from Login. Non-2xx responses are returned as
// *aivae.QueryError carrying the server's "message" field.
package pharmbot

import "time"

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://aivae.pharmbotai.com/api"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 20 * time.Second

	submitPath  = "/query/submit"
	historyPath = "/query/history"
	loginPath   = "/auth/login"
	logoutPath  = "/auth/logout"
)

type submitRequest struct {
	Question string `json:"question"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
