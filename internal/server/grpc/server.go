package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/pakegate/internal/logging"
	"github.com/dmitrijs2005/pakegate/internal/server/services"
)

// Registration is implemented by services.RegistrationService.
type Registration interface {
	Start(ctx context.Context, req services.RegistrationStart) (*services.StartResult, error)
	Finish(ctx context.Context, key string, followUp []byte) error
}

// Login is implemented by services.LoginService.
type Login interface {
	Start(ctx context.Context, req services.LoginStart) (*services.StartResult, error)
	Finish(ctx context.Context, key string, followUp []byte) (*services.LoginResult, error)
}

type GRPCServer struct {
	address      string
	registration Registration
	login        Login
	logger       logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, reg Registration, login Login) *GRPCServer {
	return &GRPCServer{
		address:      a,
		logger:       l.With("module", "grpc_server"),
		registration: reg,
		login:        login,
	}
}

// NewServer creates a grpc.Server with the handshake service and the
// logging interceptor registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	srv.RegisterService(&HandshakeServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener. It returns after a graceful stop
// once ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
