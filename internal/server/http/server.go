// Package http exposes the registration and login flows as a JSON API.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/pakegate/internal/logging"
	"github.com/dmitrijs2005/pakegate/internal/server/services"
)

// MaxBodyBytes bounds every request body.
const MaxBodyBytes = 10 << 20

const shutdownTimeout = 10 * time.Second

// Registration is implemented by services.RegistrationService.
type Registration interface {
	Start(ctx context.Context, req services.RegistrationStart) (*services.StartResult, error)
	Finish(ctx context.Context, key string, followUp []byte) error
}

// Login is implemented by services.LoginService.
type Login interface {
	Start(ctx context.Context, req services.LoginStart) (*services.StartResult, error)
	Finish(ctx context.Context, key string, followUp []byte) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (string, error)
}

type HTTPServer struct {
	address      string
	registration Registration
	login        Login
	logger       logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, reg Registration, login Login) *HTTPServer {
	return &HTTPServer{
		address:      address,
		registration: reg,
		login:        login,
		logger:       l.With("module", "http_server"),
	}
}

// Handler returns the router with all routes and middlewares mounted.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/test", s.handleTest)

	r.Post("/register", s.handleRegisterStart)
	r.Post("/register/{key}", s.handleRegisterFinish)
	r.Post("/login", s.handleLoginStart)
	r.Post("/login/{key}", s.handleLoginFinish)

	r.With(s.bearerAuth).Get("/account", s.handleAccount)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		errCh <- srv.Serve(listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
