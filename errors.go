package users

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	textCodeBadCredentials    = "BAD_CREDENTIALS"
	textCodeTokenExpired      = "TOKEN_EXPIRED"
	textCodeTokenMalformed    = "TOKEN_MALFORMED"
	textCodeOwnershipRequired = "OWNERSHIP_REQUIRED"
	textCodeUserNotFound      = "USER_NOT_FOUND"
)

// ErrIdentityNotFound is returned when a login lookup matches zero or more
// than one record, or the presented password does not verify. Login failures
// map to a 400 the way the service has always reported them.
var ErrIdentityNotFound = errors.New("invalid username or password", errors.CategoryAuth).
	WithTextCode(textCodeBadCredentials).
	WithCode(errors.CodeBadRequest)

// ErrUserNotFound is returned when a user id or email is absent from the store.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(textCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrOwnershipRequired is returned when the authenticated caller does not own
// the targeted record.
var ErrOwnershipRequired = errors.New("callers may only act on their own record", errors.CategoryAuthz).
	WithTextCode(textCodeOwnershipRequired).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned when a token's exp claim is in the past.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail to parse or verify.
var ErrTokenMalformed = errors.New("authentication token malformed or invalid", errors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
