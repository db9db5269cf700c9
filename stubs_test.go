package users_test

import (
	"context"
	"sort"
	"sync"

	users "github.com/goliatone/go-users"
)

// stubUsersStore is an in-memory users.Users used by authenticator and
// controller tests.
type stubUsersStore struct {
	mu       sync.Mutex
	seq      int64
	records  map[int64]*users.User
	failWith error
}

func newStubUsersStore(seed ...*users.User) *stubUsersStore {
	s := &stubUsersStore{
		records: map[int64]*users.User{},
	}
	for _, record := range seed {
		s.mustSeed(record)
	}
	return s
}

func (s *stubUsersStore) mustSeed(record *users.User) *users.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == 0 {
		s.seq++
		record.ID = s.seq
	} else if record.ID > s.seq {
		s.seq = record.ID
	}

	clone := *record
	s.records[record.ID] = &clone
	return record
}

func (s *stubUsersStore) GetByID(ctx context.Context, id int64) (*users.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *stubUsersStore) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Email == email {
			clone := *record
			return &clone, nil
		}
	}
	return nil, users.ErrUserNotFound
}

func (s *stubUsersStore) FindByUsername(ctx context.Context, username string) ([]*users.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*users.User{}
	for _, record := range s.records {
		if record.Username == username {
			clone := *record
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubUsersStore) List(ctx context.Context) ([]*users.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*users.User, 0, len(s.records))
	for _, record := range s.records {
		clone := *record
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubUsersStore) Create(ctx context.Context, record *users.User) (*users.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	record.ID = s.seq
	clone := *record
	s.records[record.ID] = &clone
	return record, nil
}

func (s *stubUsersStore) Update(ctx context.Context, id int64, record *users.User) error {
	if s.failWith != nil {
		return s.failWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[id]
	if !ok {
		return users.ErrUserNotFound
	}

	current.Username = record.Username
	current.Password = record.Password
	current.Email = record.Email
	return nil
}

func (s *stubUsersStore) Delete(ctx context.Context, id int64) error {
	if s.failWith != nil {
		return s.failWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return users.ErrUserNotFound
	}
	delete(s.records, id)
	return nil
}

var _ users.Users = (*stubUsersStore)(nil)

// recordingNotifier captures PasswordChanged calls.
type recordingNotifier struct {
	changed []int64
}

func (n *recordingNotifier) PasswordChanged(ctx context.Context, user *users.User) error {
	n.changed = append(n.changed, user.ID)
	return nil
}

// testConfig satisfies users.Config with fixed values.
type testConfig struct {
	signingKey string
	contextKey string
	ttl        int
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey: "test-signing-key",
		contextKey: "user",
		ttl:        168,
	}
}

func (c *testConfig) GetSigningKey() string    { return c.signingKey }
func (c *testConfig) GetSigningMethod() string { return "HS256" }
func (c *testConfig) GetContextKey() string    { return c.contextKey }
func (c *testConfig) GetTokenExpiration() int  { return c.ttl }
func (c *testConfig) GetTokenLookup() string   { return "header:Authorization" }
func (c *testConfig) GetAuthScheme() string    { return "Bearer" }
func (c *testConfig) GetIssuer() string        { return "go-users-test" }
func (c *testConfig) GetAudience() []string    { return nil }
