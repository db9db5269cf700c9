package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the credential store: a durable mapping from id to account record.
// Writes are atomic per call; concurrent updates are last-writer-wins.
type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) ([]*User, error)
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	Update(ctx context.Context, id int64, record *User) error
	Delete(ctx context.Context, id int64) error
}

type usersStore struct {
	db     bun.IDB
	logger Logger
}

var _ Users = (*usersStore)(nil)

type UsersStoreOption func(*usersStore)

func WithStoreLogger(logger Logger) UsersStoreOption {
	return func(s *usersStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewUsersStore returns a bun-backed Users store.
func NewUsersStore(db bun.IDB, opts ...UsersStoreOption) Users {
	store := &usersStore{
		db:     db,
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *usersStore) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordNotFound("id", id)
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load user by id")
	}

	return record, nil
}

func (s *usersStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordNotFound("email", email)
		}
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load user by email")
	}

	return record, nil
}

// FindByUsername returns every record carrying the username. The store does
// not enforce uniqueness, so callers own the zero/one/many decision.
func (s *usersStore) FindByUsername(ctx context.Context, username string) ([]*User, error) {
	var records []*User
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.username = ?", username).
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load users by username")
	}

	return records, nil
}

func (s *usersStore) List(ctx context.Context) ([]*User, error) {
	var records []*User
	err := s.db.NewSelect().
		Model(&records).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to list users")
	}

	return records, nil
}

func (s *usersStore) Create(ctx context.Context, record *User) (*User, error) {
	// No uniqueness checks: duplicate usernames and emails insert cleanly.
	_, err := s.db.NewInsert().
		Model(record).
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to insert user")
	}

	return record, nil
}

// Update overwrites username, password, and email wholesale.
func (s *usersStore) Update(ctx context.Context, id int64, record *User) error {
	now := time.Now()
	res, err := s.db.NewUpdate().
		Model((*User)(nil)).
		Set("username = ?", record.Username).
		Set("password = ?", record.Password).
		Set("email = ?", record.Email).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to update user")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return recordNotFound("id", id)
	}

	return nil
}

func (s *usersStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to delete user")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return recordNotFound("id", id)
	}

	return nil
}

func recordNotFound(field string, value any) *errors.Error {
	clone := ErrUserNotFound.Clone()
	if clone == nil {
		return ErrUserNotFound
	}
	return clone.WithMetadata(map[string]any{field: value})
}
