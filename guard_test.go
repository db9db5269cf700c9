package users_test

import (
	"testing"

	"github.com/goliatone/go-errors"
	users "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
)

func TestOwnershipGuard_Authorize(t *testing.T) {
	guard := users.NewOwnershipGuard(nil)

	t.Run("allows a caller acting on their own record", func(t *testing.T) {
		assert.NoError(t, guard.Authorize(5, 5))
	})

	t.Run("denies a caller acting on another record", func(t *testing.T) {
		err := guard.Authorize(5, 6)
		assert.ErrorIs(t, err, users.ErrOwnershipRequired)

		var richErr *errors.Error
		assert.True(t, errors.As(err, &richErr))
		assert.Equal(t, errors.CategoryAuthz, richErr.Category)
	})

	t.Run("denies the unknown caller sentinel", func(t *testing.T) {
		err := guard.Authorize(users.UnknownCallerID, 5)
		assert.ErrorIs(t, err, users.ErrOwnershipRequired)
	})

	t.Run("denies the sentinel even against itself", func(t *testing.T) {
		// A record can never legitimately have the sentinel id, so equality
		// with it must not grant access.
		err := guard.Authorize(users.UnknownCallerID, users.UnknownCallerID)
		assert.ErrorIs(t, err, users.ErrOwnershipRequired)
	})
}
