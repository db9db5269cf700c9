package users

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// Middleware builds the bearer-token guard applied to protected routes.
type Middleware interface {
	ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc
}

// RegisterUserRoutes mounts the account API. Registration and login are open,
// everything else goes through the bearer-token middleware.
func RegisterUserRoutes[T any](app router.Router[T], opts ...UsersControllerOption) {
	controller := NewUsersController(opts...)

	protected := controller.Auther.ProtectedRoute(
		controller.Config,
		controller.AuthErrorHandler,
	)

	app.Post(controller.Routes.Login, controller.Login).
		SetName("users-login.post")

	app.Post(controller.Routes.Users, controller.Create).
		SetName("users-create.post")

	app.Get(controller.Routes.Users, controller.List, protected).
		SetName("users-list.get")

	app.Get(controller.Routes.Users+"/:id", controller.Show, protected).
		SetName("users-show.get")

	app.Put(controller.Routes.Users+"/:id", controller.Update, protected).
		SetName("users-update.put")

	app.Delete(controller.Routes.Users+"/:id", controller.Delete, protected).
		SetName("users-delete.delete")

	app.Post(controller.Routes.Users+"/:email/change-password", controller.ChangePassword, protected).
		SetName("users-change-password.post")
}

type UsersControllerRoutes struct {
	Login string
	Users string
}

type UsersController struct {
	Logger           Logger
	Store            Users
	Auther           Middleware
	Authenticator    Authenticator
	Tokens           TokenService
	Verifier         PasswordVerifier
	Guard            *OwnershipGuard
	Notifier         Notifier
	Config           Config
	Routes           *UsersControllerRoutes
	ErrorHandler     router.ErrorHandler
	AuthErrorHandler router.ErrorHandler
}

type UsersControllerOption func(*UsersController) *UsersController

func NewUsersController(opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger:       defLogger{},
		ErrorHandler: RenderError,
		Notifier:     NoopNotifier(),
		Routes: &UsersControllerRoutes{
			Login: "/login",
			Users: "/users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Store == nil {
		panic("Missing Users store in users controller...")
	}

	if c.Authenticator == nil {
		panic("Missing Authenticator in users controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in users controller...")
	}

	if c.Config == nil {
		panic("Missing Config in users controller...")
	}

	if c.Verifier == nil {
		c.Verifier = NewPasswordVerifier(SchemePlaintext)
	}

	if c.Guard == nil {
		c.Guard = NewOwnershipGuard(c.Logger)
	}

	if c.Auther == nil {
		auther, _ := NewHTTPAuthenticator(c.Authenticator, c.Config)
		c.Auther = auther
		if c.AuthErrorHandler == nil {
			c.AuthErrorHandler = auther.MakeAPIAuthErrorHandler(false)
		}
	}

	if c.AuthErrorHandler == nil {
		c.AuthErrorHandler = RenderError
	}

	return c
}

func WithControllerStore(store Users) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Store = store
		return c
	}
}

func WithControllerAuthenticator(auth Authenticator) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Authenticator = auth
		return c
	}
}

func WithControllerTokenService(tokens TokenService) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerVerifier(verifier PasswordVerifier) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Verifier = verifier
		return c
	}
}

func WithControllerNotifier(notifier Notifier) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if notifier != nil {
			c.Notifier = notifier
		}
		return c
	}
}

func WithControllerConfig(cfg Config) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Config = cfg
		return c
	}
}

func WithControllerLogger(logger Logger) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (c *UsersController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	token, err := c.Authenticator.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		c.Logger.Error("login error: %s", err)
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"token": token,
	})
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Email    string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
	)
}

// Create registers a new account and returns the stored record together with
// a fresh session token, so clients can authenticate immediately.
func (c *UsersController) Create(ctx router.Context) error {
	payload := new(CreateUserRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	digest, err := c.Verifier.Digest(payload.Password)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	record, err := c.Store.Create(ctx.Context(), &User{
		Username: payload.Username,
		Password: digest,
		Email:    payload.Email,
	})
	if err != nil {
		c.Logger.Error("create user error: %s", err)
		return c.ErrorHandler(ctx, err)
	}

	token, err := c.Tokens.Generate(record)
	if err != nil {
		c.Logger.Error("create user token error: %s", err)
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, router.ViewContext{
		"user":  NewUserRecord(record),
		"token": token,
	})
}

// List returns every account. Any authenticated caller may list.
func (c *UsersController) List(ctx router.Context) error {
	records, err := c.Store.List(ctx.Context())
	if err != nil {
		c.Logger.Error("list users error: %s", err)
		return c.ErrorHandler(ctx, err)
	}

	out := make([]*UserRecord, 0, len(records))
	for _, record := range records {
		out = append(out, NewUserRecord(record))
	}

	return ctx.JSON(router.StatusOK, out)
}

func (c *UsersController) Show(ctx router.Context) error {
	id := int64(ctx.ParamsInt("id", 0))

	if err := c.Guard.Authorize(c.callerID(ctx), id); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	record, err := c.Store.GetByID(ctx.Context(), id)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserRecord(record))
}

// UpdateUserRequest carries the full replacement state for an account.
type UpdateUserRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Email    string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 100), is.Email),
	)
}

func (c *UsersController) Update(ctx router.Context) error {
	id := int64(ctx.ParamsInt("id", 0))

	if err := c.Guard.Authorize(c.callerID(ctx), id); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	payload := new(UpdateUserRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	digest, err := c.Verifier.Digest(payload.Password)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	err = c.Store.Update(ctx.Context(), id, &User{
		Username: payload.Username,
		Password: digest,
		Email:    payload.Email,
	})
	if err != nil {
		c.Logger.Error("update user error: %s", err)
		return c.ErrorHandler(ctx, err)
	}

	return ctx.NoContent(router.StatusNoContent)
}

// Delete removes the caller's own record. Deleting an absent record is a 404,
// and already-issued tokens stay valid until they expire.
func (c *UsersController) Delete(ctx router.Context) error {
	id := int64(ctx.ParamsInt("id", 0))

	if err := c.Guard.Authorize(c.callerID(ctx), id); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	if err := c.Store.Delete(ctx.Context(), id); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	return ctx.NoContent(router.StatusNoContent)
}

// ChangePasswordRequest carries the replacement credential.
type ChangePasswordRequest struct {
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(1, 200)),
	)
}

// ChangePassword updates the credential for the account addressed by email.
// The record is resolved before the ownership check so callers only learn
// about records they own: an unknown email is a 404, someone else's is a 403.
func (c *UsersController) ChangePassword(ctx router.Context) error {
	email := ctx.Param("email")

	record, err := c.Store.GetByEmail(ctx.Context(), email)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	if err := c.Guard.Authorize(c.callerID(ctx), record.ID); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	payload := new(ChangePasswordRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.invalidPayload(ctx, err)
	}

	digest, err := c.Verifier.Digest(payload.Password)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	record.Password = digest
	if err := c.Store.Update(ctx.Context(), record.ID, record); err != nil {
		c.Logger.Error("change password error: %s", err)
		return c.ErrorHandler(ctx, err)
	}

	if err := c.Notifier.PasswordChanged(ctx.Context(), record); err != nil {
		c.Logger.Warn("password change notification error: %s", err)
	}

	return ctx.JSON(router.StatusOK, router.ViewContext{
		"message": "password updated",
	})
}

func (c *UsersController) callerID(ctx router.Context) int64 {
	return CallerID(ctx, c.Config.GetContextKey())
}

func (c *UsersController) badPayload(ctx router.Context, err error) error {
	c.Logger.Error("parse payload: %s", err)
	return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
		WithCode(errors.CodeBadRequest))
}

func (c *UsersController) invalidPayload(ctx router.Context, err error) error {
	c.Logger.Error("validate payload: %s", err)
	return c.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, "invalid request payload").
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{"validation": err.Error()}))
}
