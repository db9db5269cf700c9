package users

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the account record. IDs are assigned by the store on insert.
// Username and email carry no uniqueness constraint; duplicate usernames
// are legal and surface as an authentication miss, not an error.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username      string     `bun:"username,notnull" json:"username,omitempty"`
	Password      string     `bun:"password,notnull" json:"-"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Identity implementation so a stored record can be handed straight to the
// TokenService.

func (u *User) GetID() int64 {
	if u == nil {
		return UnknownCallerID
	}
	return u.ID
}

func (u *User) GetUsername() string {
	if u == nil {
		return ""
	}
	return u.Username
}

func (u *User) GetEmail() string {
	if u == nil {
		return ""
	}
	return u.Email
}

var _ Identity = (*User)(nil)

// UserRecord is the wire representation of a User. The stored credential is
// withheld regardless of the configured password scheme.
type UserRecord struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewUserRecord builds the outbound DTO for a stored user.
func NewUserRecord(user *User) *UserRecord {
	if user == nil {
		return &UserRecord{}
	}
	return &UserRecord{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
