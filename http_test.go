package users_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	users "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPAuthenticator(t *testing.T) {
	store := newStubUsersStore()
	auther := users.NewAuthenticator(store, newTestConfig())

	httpAuth, err := users.NewHTTPAuthenticator(auther, newTestConfig())

	require.NoError(t, err)
	assert.NotNil(t, httpAuth)
	assert.NotNil(t, httpAuth.ErrorHandler)
	assert.NotNil(t, httpAuth.AuthErrorHandler)
}

func TestRouteAuthenticator_ProtectedRoute(t *testing.T) {
	store := newStubUsersStore(
		&users.User{Username: "pepe", Password: "secret", Email: "pepe@example.com"},
	)
	cfg := newTestConfig()
	auther := users.NewAuthenticator(store, cfg)

	httpAuth, err := users.NewHTTPAuthenticator(auther, cfg)
	require.NoError(t, err)

	protected := httpAuth.ProtectedRoute(cfg, func(ctx router.Context, err error) error {
		return err
	})

	next := func(ctx router.Context) error { return nil }

	t.Run("valid token passes through", func(t *testing.T) {
		token, err := auther.Login(context.Background(), "pepe", "secret")
		require.NoError(t, err)

		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer " + token
		ctx.On("GetString", "Authorization", "").Return("Bearer " + token)
		ctx.On("Locals", "user", mock.Anything).Return(nil)

		require.NoError(t, protected(next)(ctx))
		assert.True(t, ctx.NextCalled)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("GetString", "Authorization", "").Return("")

		err := protected(next)(ctx)
		require.Error(t, err)
		assert.False(t, ctx.NextCalled)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer garbage"
		ctx.On("GetString", "Authorization", "").Return("Bearer garbage")

		err := protected(next)(ctx)
		require.Error(t, err)
	})
}

func TestRenderError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found maps to 404", users.ErrUserNotFound, router.StatusNotFound},
		{"ownership maps to 403", users.ErrOwnershipRequired, router.StatusForbidden},
		{"bad credentials map to 400", users.ErrIdentityNotFound, router.StatusBadRequest},
		{"expired token maps to 401", users.ErrTokenExpired, router.StatusUnauthorized},
		{
			"uncoded auth category maps to 401",
			errors.New("token rejected", errors.CategoryAuth),
			router.StatusUnauthorized,
		},
		{
			"plain errors map to 500",
			assert.AnError,
			router.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := router.NewMockContext()

			var body router.ViewContext
			ctx.On("JSON", tc.status, mock.Anything).Run(func(args mock.Arguments) {
				body = args.Get(1).(router.ViewContext)
			}).Return(nil)

			require.NoError(t, users.RenderError(ctx, tc.err))
			require.Contains(t, body, "error")
		})
	}
}

func TestMakeAPIAuthErrorHandler(t *testing.T) {
	store := newStubUsersStore()
	cfg := newTestConfig()
	auther := users.NewAuthenticator(store, cfg)

	httpAuth, err := users.NewHTTPAuthenticator(auther, cfg)
	require.NoError(t, err)

	t.Run("optional mode proceeds unauthenticated", func(t *testing.T) {
		handler := httpAuth.MakeAPIAuthErrorHandler(true)

		ctx := router.NewMockContext()

		require.NoError(t, handler(ctx, assert.AnError))
		assert.True(t, ctx.NextCalled)
	})

	t.Run("required mode renders an auth error", func(t *testing.T) {
		handler := httpAuth.MakeAPIAuthErrorHandler(false)

		ctx := router.NewMockContext()
		ctx.On("OriginalURL").Return("/users/1")
		ctx.On("JSON", router.StatusUnauthorized, mock.Anything).Return(nil)

		require.NoError(t, handler(ctx, assert.AnError))
		assert.False(t, ctx.NextCalled)
	})
}
