package users

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the verified view of a session token's payload.
type AuthClaims interface {
	Subject() string
	UserID() int64
	Username() string
	Expires() time.Time
	IssuedAt() time.Time
}

// SessionClaims is the concrete implementation of AuthClaims.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID  int64  `json:"uid,omitempty"`
	Name string `json:"name,omitempty"`
}

var _ AuthClaims = (*SessionClaims)(nil)

// Subject returns the subject claim
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the caller's identity as stored in the token. A missing or
// unparsable subject yields UnknownCallerID, which never matches a real id.
func (c *SessionClaims) UserID() int64 {
	if c.UID > 0 {
		return c.UID
	}

	id, err := strconv.ParseInt(c.RegisteredClaims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return UnknownCallerID
	}
	return id
}

// Username returns the subject name claim
func (c *SessionClaims) Username() string {
	return c.Name
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// FormatSubject renders a user id the way the token subject claim stores it.
func FormatSubject(id int64) string {
	return strconv.FormatInt(id, 10)
}
