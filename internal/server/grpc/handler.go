package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/server/services"
)

func (s *GRPCServer) RegisterStart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		in  services.RegistrationStart
		err error
	)
	if in.Username, err = stringField(req, "username"); err != nil {
		return nil, toStatus(err)
	}
	if in.Message, err = bytesField(req, "request"); err != nil {
		return nil, toStatus(err)
	}
	if in.Wallet, err = stringField(req, "wallet"); err != nil {
		return nil, toStatus(err)
	}
	if in.Salt, err = stringField(req, "salt"); err != nil {
		return nil, toStatus(err)
	}
	in.ClientIP = peerIP(ctx)

	res, err := s.registration.Start(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return startResponse(res), nil
}

func (s *GRPCServer) RegisterFinish(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	key, followUp, err := finishRequest(req)
	if err != nil {
		return nil, toStatus(err)
	}

	if err := s.registration.Finish(ctx, key, followUp); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"success": structpb.NewBoolValue(true),
	}}, nil
}

func (s *GRPCServer) LoginStart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		in  services.LoginStart
		err error
	)
	if in.Username, err = stringField(req, "username"); err != nil {
		return nil, toStatus(err)
	}
	if in.Message, err = bytesField(req, "request"); err != nil {
		return nil, toStatus(err)
	}
	in.ClientIP = peerIP(ctx)

	res, err := s.login.Start(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return startResponse(res), nil
}

func (s *GRPCServer) LoginFinish(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	key, followUp, err := finishRequest(req)
	if err != nil {
		return nil, toStatus(err)
	}

	res, err := s.login.Finish(ctx, key, followUp)
	if err != nil {
		return nil, toStatus(err)
	}

	fields := map[string]*structpb.Value{
		"wallet": structpb.NewStringValue(res.Wallet),
		"salt":   structpb.NewStringValue(res.Salt),
	}
	if res.AccessToken != "" {
		fields["access_token"] = structpb.NewStringValue(res.AccessToken)
	}
	return &structpb.Struct{Fields: fields}, nil
}

func finishRequest(req *structpb.Struct) (string, []byte, error) {
	key, err := stringField(req, "key")
	if err != nil {
		return "", nil, err
	}
	followUp, err := bytesField(req, "message")
	if err != nil {
		return "", nil, err
	}
	return key, followUp, nil
}

func startResponse(res *services.StartResult) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"key":      structpb.NewStringValue(res.Key),
		"response": BytesValue(res.Message),
	}}
}

func peerIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	return hostOnly(p.Addr.String())
}

// toStatus maps flow errors to gRPC codes. Only the sentinel's text is sent.
func toStatus(err error) error {
	for _, m := range []struct {
		err  error
		code codes.Code
	}{
		{common.ErrValidation, codes.InvalidArgument},
		{common.ErrUsernameTaken, codes.AlreadyExists},
		{common.ErrConflict, codes.AlreadyExists},
		{common.ErrUserNotFound, codes.NotFound},
		{common.ErrNotFound, codes.NotFound},
		{common.ErrInvalidFollowUp, codes.Unauthenticated},
		{common.ErrRateLimited, codes.ResourceExhausted},
		{common.ErrUnavailable, codes.Unavailable},
	} {
		if errors.Is(err, m.err) {
			return status.Error(m.code, m.err.Error())
		}
	}
	return status.Error(codes.Internal, "internal error")
}
