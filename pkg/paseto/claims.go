package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

// Claims is what a verified staff access token says about the caller.
type Claims struct {
	UserID    uuid.UUID
	SessionID *uuid.UUID

	// Role is the clinic role the identity service stamped on the token
	// (clinician, nurse, front_desk, ...). Permission checks still go through
	// casbin; the claim is carried for attribution only.
	Role string

	TokenID   string
	ExpiresAt time.Time
}

// GetUserID implements reqctx.AuthClaims.
func (c *Claims) GetUserID() uuid.UUID {
	return c.UserID
}

// GetRole implements reqctx.AuthClaims.
func (c *Claims) GetRole() string {
	return c.Role
}
