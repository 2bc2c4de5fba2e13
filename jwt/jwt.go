// Package jwt decodes the identity carried in a session token.
//
// The token is issued and verified by the API server. The client has no key,
// so claims are read without verifying the signature and must only be used
// for display.
package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pharmbotai/aivae"
)

// claims is the payload of an AIVAe session token.
type claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"id,omitempty"`
	Username   string `json:"username,omitempty"`
	Role       string `json:"role,omitempty"`
	PharmacyID string `json:"pharmacy_id,omitempty"`
}

// Inspect returns the identity described by token.
func Inspect(token string) (aivae.Identity, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return aivae.Identity{}, fmt.Errorf("failed to parse session token: %w", err)
	}

	id := aivae.Identity{
		UserID:     c.UserID,
		Username:   c.Username,
		Role:       c.Role,
		PharmacyID: c.PharmacyID,
	}
	if id.UserID == "" {
		id.UserID = c.Subject
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
