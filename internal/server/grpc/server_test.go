package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/logging"
	"github.com/dmitrijs2005/pakegate/internal/server/services"
)

type fakeRegistration struct {
	startReq  services.RegistrationStart
	startErr  error
	finishKey string
	finishMsg []byte
	finishErr error
}

func (f *fakeRegistration) Start(_ context.Context, req services.RegistrationStart) (*services.StartResult, error) {
	f.startReq = req
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &services.StartResult{Key: "abc", Message: []byte{9, 8, 7}}, nil
}

func (f *fakeRegistration) Finish(_ context.Context, key string, followUp []byte) error {
	f.finishKey, f.finishMsg = key, followUp
	return f.finishErr
}

type fakeLogin struct {
	startReq  services.LoginStart
	finishErr error
	panics    bool
}

func (f *fakeLogin) Start(_ context.Context, req services.LoginStart) (*services.StartResult, error) {
	if f.panics {
		panic("boom")
	}
	f.startReq = req
	return &services.StartResult{Key: "def", Message: []byte{1}}, nil
}

func (f *fakeLogin) Finish(_ context.Context, key string, followUp []byte) (*services.LoginResult, error) {
	if f.finishErr != nil {
		return nil, f.finishErr
	}
	return &services.LoginResult{Wallet: "w1", Salt: "s1"}, nil
}

func dial(t *testing.T, reg Registration, login Login) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer("", logging.Nop{}, reg, login)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})
	return conn
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestGRPC_RegisterStartAndFinish(t *testing.T) {
	reg := &fakeRegistration{}
	conn := dial(t, reg, &fakeLogin{})
	ctx := context.Background()

	out := new(structpb.Struct)
	err := conn.Invoke(ctx, MethodRegisterStart, mustStruct(t, map[string]any{
		"username": "alice",
		"request":  []any{1, 2, 3},
		"wallet":   "w1",
		"salt":     "s1",
	}), out)
	require.NoError(t, err)

	assert.Equal(t, "abc", out.GetFields()["key"].GetStringValue())
	assert.Equal(t, []any{9.0, 8.0, 7.0}, out.GetFields()["response"].AsInterface())
	assert.Equal(t, []byte{1, 2, 3}, reg.startReq.Message)
	assert.Equal(t, "s1", reg.startReq.Salt)

	out = new(structpb.Struct)
	err = conn.Invoke(ctx, MethodRegisterFinish, mustStruct(t, map[string]any{
		"key":     "abc",
		"message": []any{4, 5},
	}), out)
	require.NoError(t, err)
	assert.True(t, out.GetFields()["success"].GetBoolValue())
	assert.Equal(t, "abc", reg.finishKey)
	assert.Equal(t, []byte{4, 5}, reg.finishMsg)
}

func TestGRPC_LoginFinish(t *testing.T) {
	conn := dial(t, &fakeRegistration{}, &fakeLogin{})

	out := new(structpb.Struct)
	err := conn.Invoke(context.Background(), MethodLoginFinish, mustStruct(t, map[string]any{
		"key":     "def",
		"message": []any{1},
	}), out)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"wallet": "w1", "salt": "s1"}, out.AsMap())
}

func TestGRPC_BadPayloadIsInvalidArgument(t *testing.T) {
	reg := &fakeRegistration{}
	conn := dial(t, reg, &fakeLogin{})

	for _, req := range []map[string]any{
		{"username": "a", "request": "AQID", "salt": "s"},
		{"username": "a", "request": []any{256}, "salt": "s"},
		{"username": "a", "request": []any{1.5}, "salt": "s"},
		{"username": 7, "request": []any{1}, "salt": "s"},
	} {
		err := conn.Invoke(context.Background(), MethodRegisterStart, mustStruct(t, req), new(structpb.Struct))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), req)
	}
	assert.Empty(t, reg.startReq.Username)
}

func TestGRPC_ErrorCodes(t *testing.T) {
	tests := []struct {
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
		{common.ErrStorage, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			conn := dial(t, &fakeRegistration{finishErr: tt.err}, &fakeLogin{})
			err := conn.Invoke(context.Background(), MethodRegisterFinish, mustStruct(t, map[string]any{
				"key": "abc", "message": []any{1},
			}), new(structpb.Struct))
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestGRPC_PanicBecomesInternal(t *testing.T) {
	conn := dial(t, &fakeRegistration{}, &fakeLogin{panics: true})

	err := conn.Invoke(context.Background(), MethodLoginStart, mustStruct(t, map[string]any{
		"username": "a", "request": []any{1},
	}), new(structpb.Struct))
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, &fakeRegistration{}, &fakeLogin{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, &fakeRegistration{}, &fakeLogin{})
	assert.Error(t, srv.Run(context.Background()))
}
