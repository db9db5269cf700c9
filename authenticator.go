package users

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther verifies credentials against the store and mints session tokens.
type Auther struct {
	store        Users
	verifier     PasswordVerifier
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator backed by the given store.
func NewAuthenticator(store Users, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:        store,
		verifier:     PlaintextVerifier{},
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithPasswordVerifier swaps the credential comparison strategy. The default
// is the plaintext scheme; a hashed scheme slots in without touching the
// authentication control flow.
func (s *Auther) WithPasswordVerifier(verifier PasswordVerifier) *Auther {
	if verifier != nil {
		s.verifier = verifier
	}
	return s
}

// WithTokenService replaces the token service minted at construction.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Authenticate resolves a username/password pair to the single account it
// matches. Zero matches or an ambiguous many both report bad credentials;
// duplicate usernames get no special handling beyond that.
func (s *Auther) Authenticate(ctx context.Context, username, password string) (*User, error) {
	candidates, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Error("Authenticate store lookup error", "username", username, "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up credentials")
	}

	var matched *User
	for _, candidate := range candidates {
		if err := s.verifier.Verify(password, candidate.Password); err != nil {
			continue
		}
		if matched != nil {
			s.logger.Warn("Authenticate matched more than one record", "username", username)
			return nil, ErrIdentityNotFound
		}
		matched = candidate
	}

	if matched == nil {
		return nil, ErrIdentityNotFound
	}

	return matched, nil
}

// Login authenticates and mints a session token for the matched account.
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokenService.Generate(user)
	if err != nil {
		s.logger.Error("Login token generation error", "user_id", user.ID, "error", err)
		return "", err
	}

	return token, nil
}

var _ Authenticator = (*Auther)(nil)
