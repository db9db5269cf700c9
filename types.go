package users

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity.
type Identity interface {
	GetID() int64
	GetUsername() string
	GetEmail() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// TokenService issues and validates signed session tokens.
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *SessionClaims) (string, error)
	TokenValidator

	// Valid reports whether the token would pass Validate. It never errors;
	// the jwtware middleware remains the request-path source of truth and
	// this form exists for out-of-band checks only.
	Valid(tokenString string) bool
}

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// PasswordVerifier decides whether a presented password matches the stored
// credential. Implementations must be safe for concurrent use.
type PasswordVerifier interface {
	Verify(password, stored string) error
	// Digest prepares a raw password for storage under this scheme.
	Digest(password string) (string, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// Notifier is the outbound messaging collaborator. The default implementation
// does nothing; delivery is out of scope for this service.
type Notifier interface {
	PasswordChanged(ctx context.Context, user *User) error
}

type noopNotifier struct{}

func (noopNotifier) PasswordChanged(ctx context.Context, user *User) error { return nil }

// NoopNotifier returns a Notifier that drops every notification.
func NoopNotifier() Notifier { return noopNotifier{} }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] USERS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] USERS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] USERS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] USERS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
