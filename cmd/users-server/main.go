package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	users "github.com/goliatone/go-users"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// ServerConfig is loaded from the environment. JWT_SECRET has no default so a
// missing secret fails at startup instead of signing tokens with an empty key.
type ServerConfig struct {
	Address        string   `env:"ADDRESS" envDefault:":8572"`
	DSN            string   `env:"DSN" envDefault:"file::memory:?cache=shared"`
	SigningKey     string   `env:"JWT_SECRET,required,notEmpty"`
	SigningMethod  string   `env:"JWT_SIGNING_METHOD" envDefault:"HS256"`
	ContextKey     string   `env:"JWT_CONTEXT_KEY" envDefault:"user"`
	TokenTTLHours  int      `env:"JWT_TOKEN_TTL_HOURS" envDefault:"168"`
	TokenLookup    string   `env:"JWT_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme     string   `env:"JWT_AUTH_SCHEME" envDefault:"Bearer"`
	Issuer         string   `env:"JWT_ISSUER" envDefault:"go-users"`
	Audience       []string `env:"JWT_AUDIENCE" envSeparator:","`
	PasswordScheme string   `env:"PASSWORD_SCHEME" envDefault:"plaintext"`
}

func (c *ServerConfig) GetSigningKey() string    { return c.SigningKey }
func (c *ServerConfig) GetSigningMethod() string { return c.SigningMethod }
func (c *ServerConfig) GetContextKey() string    { return c.ContextKey }
func (c *ServerConfig) GetTokenExpiration() int  { return c.TokenTTLHours }
func (c *ServerConfig) GetTokenLookup() string   { return c.TokenLookup }
func (c *ServerConfig) GetAuthScheme() string    { return c.AuthScheme }
func (c *ServerConfig) GetIssuer() string        { return c.Issuer }
func (c *ServerConfig) GetAudience() []string    { return c.Audience }

type App struct {
	config *ServerConfig
	bunDB  *bun.DB
	store  users.Users
	auth   *users.Auther
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("users"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := &ServerConfig{}
	if err := env.Parse(cfg); err != nil {
		lgr.GetLogger("config").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithUserRoutes(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.config.Address)

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.config.DSN)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to open database")
	}

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().
		Model((*users.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to bootstrap users table")
	}

	app.bunDB = bunDB
	app.store = users.NewUsersStore(bunDB, users.WithStoreLogger(app.GetLogger("store")))

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	app.srv = srv
	return nil
}

func WithUserRoutes(ctx context.Context, app *App) error {
	cfg := app.config

	verifier := users.NewPasswordVerifier(users.PasswordScheme(cfg.PasswordScheme))

	auther := users.NewAuthenticator(app.store, cfg).
		WithLogger(app.GetLogger("auth")).
		WithPasswordVerifier(verifier)

	app.auth = auther

	httpAuth, err := users.NewHTTPAuthenticator(auther, cfg)
	if err != nil {
		return err
	}
	httpAuth.WithLogger(app.GetLogger("auth:http"))

	users.RegisterUserRoutes(app.srv.Router(),
		users.WithControllerStore(app.store),
		users.WithControllerAuthenticator(auther),
		users.WithControllerTokenService(auther.TokenService()),
		users.WithControllerVerifier(verifier),
		users.WithControllerConfig(cfg),
		users.WithControllerLogger(app.GetLogger("users:ctrl")),
		func(c *users.UsersController) *users.UsersController {
			c.Auther = httpAuth
			c.AuthErrorHandler = httpAuth.MakeAPIAuthErrorHandler(false)
			return c
		},
	)

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
