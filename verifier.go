package users

import (
	"crypto/subtle"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// PasswordScheme names a PasswordVerifier implementation for configuration.
type PasswordScheme = string

const (
	// SchemePlaintext stores and compares credentials verbatim. This is the
	// historical behavior of the service and remains the default; switching
	// to bcrypt is a deployment decision, not something the Authenticator
	// does on its own.
	SchemePlaintext PasswordScheme = "plaintext"
	// SchemeBcrypt stores bcrypt digests and compares with constant-time
	// hash verification.
	SchemeBcrypt PasswordScheme = "bcrypt"
)

var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput)

// NewPasswordVerifier resolves a scheme name to an implementation. Unknown
// schemes fall back to plaintext.
func NewPasswordVerifier(scheme PasswordScheme) PasswordVerifier {
	if scheme == SchemeBcrypt {
		return BcryptVerifier{}
	}
	return PlaintextVerifier{}
}

// PlaintextVerifier compares raw credential bytes. Case-sensitive, exact.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(password, stored string) error {
	if subtle.ConstantTimeCompare([]byte(password), []byte(stored)) != 1 {
		return ErrIdentityNotFound
	}
	return nil
}

func (PlaintextVerifier) Digest(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}
	return password, nil
}

// BcryptVerifier stores and checks bcrypt digests.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(password, stored string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrIdentityNotFound
		}
		return err
	}
	return nil
}

func (BcryptVerifier) Digest(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(h), err
}

var (
	_ PasswordVerifier = PlaintextVerifier{}
	_ PasswordVerifier = BcryptVerifier{}
)
