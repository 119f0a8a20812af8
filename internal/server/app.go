// Package server wires the configured storage, handshake suite, rate
// limiter and transports together and runs them until a shutdown signal.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/pakegate/internal/logging"
	"github.com/dmitrijs2005/pakegate/internal/server/config"
	"github.com/dmitrijs2005/pakegate/internal/server/handshake"
	"github.com/dmitrijs2005/pakegate/internal/server/ratelimit"
	"github.com/dmitrijs2005/pakegate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pakegate/internal/server/services"
	"github.com/dmitrijs2005/pakegate/internal/server/session"

	gs "github.com/dmitrijs2005/pakegate/internal/server/grpc"
	hs "github.com/dmitrijs2005/pakegate/internal/server/http"
)

var newRepositoryManager = repomanager.New

type App struct {
	config *config.Config
	logger logging.Logger

	repos repomanager.RepositoryManager
	redis redis.UniversalClient

	regSessions   *session.Store[*services.RegistrationSession]
	loginSessions *session.Store[*services.LoginSession]

	registration *services.RegistrationService
	login        *services.LoginService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	capability, ephemeral, err := handshake.New(handshake.Config{
		Suite:         c.Suite,
		ServerKey:     c.ServerKey,
		ServerID:      c.ServerID,
		RFCPrivateKey: c.RFCPrivateKey,
		RFCPublicKey:  c.RFCPublicKey,
		RFCOPRFSeed:   c.RFCOPRFSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("handshake init error: %w", err)
	}
	if ephemeral {
		logger.Warn(ctx, "no server key configured, using ephemeral key material; registrations will not survive a restart", "suite", capability.Suite())
	}

	repos, err := newRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, repos: repos}

	var limiter ratelimit.Limiter = ratelimit.Nop{}
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		limiter = ratelimit.NewRedisLimiter(app.redis, ratelimit.Config{
			MaxAttempts: c.RateLimitStarts,
			Window:      c.RateLimitWindow,
		}, logger)
	}

	app.regSessions = services.NewRegistrationSessions(c.SessionTTL, c.MaxSessions, logger)
	app.loginSessions = services.NewLoginSessions(c.SessionTTL, c.MaxSessions, logger)

	app.registration = services.NewRegistrationService(capability, repos.Users(), app.regSessions, limiter, logger)
	app.login = services.NewLoginService(capability, repos.Users(), app.loginSessions, limiter, services.TokenConfig{
		Secret:   []byte(c.SecretKey),
		Validity: c.AccessTokenValidityDuration,
	}, logger)

	logger.Info(ctx, "App initialized", "suite", capability.Suite(), "storage", c.Storage, "rate_limit", c.RedisAddr != "")
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpServer() *hs.HTTPServer {
	return hs.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.registration, app.login)
}

func (app *App) grpcServer() *gs.GRPCServer {
	return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.registration, app.login)
}

// Run starts the enabled transports and the session sweepers and blocks
// until ctx is cancelled, a signal arrives or one of them fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)

	if app.config.EndpointAddrHTTP != "" {
		g.Go(func() error { return app.httpServer().Run(ctx) })
	}
	if app.config.EndpointAddrGRPC != "" {
		g.Go(func() error { return app.grpcServer().Run(ctx) })
	}
	g.Go(func() error { return app.regSessions.Run(ctx, app.config.SweepInterval) })
	g.Go(func() error { return app.loginSessions.Run(ctx, app.config.SweepInterval) })

	err := g.Wait()
	if cerr := app.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}

// Close releases storage and redis connections.
func (app *App) Close() error {
	var errs []error
	if err := app.repos.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage close: %w", err))
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	return errors.Join(errs...)
}
