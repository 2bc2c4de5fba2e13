package aivae

import (
	"context"
	"time"
)

// StatusSuccess is the status value of a successful API payload.
const StatusSuccess = "success"

// QueryService is the remote question/answer and history API.
// Implementations attach the token to each request.
type QueryService interface {
	// SubmitQuery asks a question. A transport or server failure is returned
	// as an error, preferably a *QueryError.
	SubmitQuery(ctx context.Context, token, question string) (QueryResponse, error)

	// History returns the past exchanges of the token's user.
	History(ctx context.Context, token string) ([]HistoryEntry, error)
}

// QueryResponse is the payload of a submitted query.
type QueryResponse struct {
	Status   string
	Response string
	Message  string
}

// Valid reports whether the payload is a well-formed success.
func (r QueryResponse) Valid() bool {
	return r.Status == StatusSuccess && r.Response != ""
}

// User is the account associated with a history entry.
type User struct {
	ID       string
	Username string
	Role     string
}

// Pharmacy is the pharmacy associated with a history entry.
type Pharmacy struct {
	ID   string
	Name string
}

// HistoryEntry is one past exchange, as stored by the server. Entries are
// immutable once fetched.
type HistoryEntry struct {
	ID        string
	Query     string
	Response  string
	CreatedAt time.Time
	User      User
	Pharmacy  Pharmacy
}
