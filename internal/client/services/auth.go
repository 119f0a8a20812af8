// Package services runs the client side of the OPAQUE handshake (sigma
// suite) against the pakegate API.
package services

import (
	"context"
	"fmt"

	"github.com/cretz/gopaque/gopaque"

	"github.com/dmitrijs2005/pakegate/internal/client/client"
)

// AuthService registers accounts and logs in. Passwords never leave the
// process; only OPAQUE protocol messages are sent.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte, wallet, salt string) error
	Login(ctx context.Context, username string, password []byte) (*client.LoginResult, error)
	Account(ctx context.Context, accessToken string) (string, error)
}

type authService struct {
	client client.Client
	crypto gopaque.Crypto
}

func NewAuthService(c client.Client) AuthService {
	return &authService{client: c, crypto: gopaque.CryptoDefault}
}

func (a *authService) Register(ctx context.Context, username string, password []byte, wallet, salt string) error {
	user := gopaque.NewUserRegister(a.crypto, []byte(username), nil)

	init, err := user.Init(password).ToBytes()
	if err != nil {
		return fmt.Errorf("encode registration init: %w", err)
	}

	key, reply, err := a.client.RegisterStart(ctx, username, init, wallet, salt)
	if err != nil {
		return err
	}

	var serverInit gopaque.ServerRegisterInit
	if err := serverInit.FromBytes(a.crypto, reply); err != nil {
		return fmt.Errorf("decode server registration reply: %w", err)
	}

	complete, err := user.Complete(&serverInit).ToBytes()
	if err != nil {
		return fmt.Errorf("encode registration complete: %w", err)
	}

	return a.client.RegisterFinish(ctx, key, complete)
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (*client.LoginResult, error) {
	user := gopaque.NewUserAuth(a.crypto, []byte(username), gopaque.NewKeyExchangeSigma(a.crypto))

	init, err := user.Init(password)
	if err != nil {
		return nil, fmt.Errorf("login init: %w", err)
	}
	initBytes, err := init.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("encode login init: %w", err)
	}

	key, reply, err := a.client.LoginStart(ctx, username, initBytes)
	if err != nil {
		return nil, err
	}

	var serverComplete gopaque.ServerAuthComplete
	if err := serverComplete.FromBytes(a.crypto, reply); err != nil {
		return nil, fmt.Errorf("decode server login reply: %w", err)
	}

	_, complete, err := user.Complete(&serverComplete)
	if err != nil {
		// Most likely a wrong password. The server session expires on its own.
		return nil, fmt.Errorf("%w: %v", client.ErrUnauthorized, err)
	}
	followUp, err := complete.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("encode login complete: %w", err)
	}

	return a.client.LoginFinish(ctx, key, followUp)
}

func (a *authService) Account(ctx context.Context, accessToken string) (string, error) {
	return a.client.Account(ctx, accessToken)
}
