// Package cli implements the pakegate command-line client:
//
//	pakegate-client [-a url] [-t timeout] register -u <name> -w <wallet> -s <salt>
//	pakegate-client [-a url] [-t timeout] login -u <name>
//
// The password is always read from the terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/pakegate/internal/client/client"
	"github.com/dmitrijs2005/pakegate/internal/client/config"
	"github.com/dmitrijs2005/pakegate/internal/client/services"
	"github.com/dmitrijs2005/pakegate/internal/common"
)

var ErrUsage = errors.New("usage: register -u <name> -w <wallet> -s <salt> | login -u <name>")

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

type App struct {
	config      *config.Config
	authService services.AuthService
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewHTTPClient(c.ServerURL, &http.Client{Timeout: c.RequestTimeout})
	if err != nil {
		return nil, err
	}

	return &App{
		config:      c,
		authService: services.NewAuthService(apiClient),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run executes the subcommand in args. Connection flags (-a, -t, -c) may
// appear anywhere and are skipped here.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, rest := subcommand(args)

	switch cmd {
	case "register":
		return a.Register(ctx, rest)
	case "login":
		return a.Login(ctx, rest)
	default:
		return ErrUsage
	}
}

// Register creates an account. Missing -u is prompted for.
func (a *App) Register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	username := fs.String("u", "", "username")
	wallet := fs.String("w", "", "wallet")
	salt := fs.String("s", "", "salt")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	name, err := a.username(*username)
	if err != nil {
		return err
	}
	if *salt == "" {
		return fmt.Errorf("%w: -s is required", ErrUsage)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, name, password, *wallet, *salt); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registered", name)
	return nil
}

// Login authenticates and prints the account's wallet and salt.
func (a *App) Login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	name, err := a.username(*username)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.authService.Login(ctx, name, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "wallet: %s\nsalt: %s\n", res.Wallet, res.Salt)
	if res.AccessToken != "" {
		fmt.Fprintf(a.out, "access token: %s\n", res.AccessToken)
	}
	return nil
}

func (a *App) username(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return getSimpleText(a.reader, "Enter username", a.out)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// subcommand finds the first register/login argument and returns it with
// the arguments that follow, minus the connection flags.
func subcommand(args []string) (string, []string) {
	for i, arg := range args {
		if arg == "register" || arg == "login" {
			return arg, dropConnectionFlags(args[i+1:])
		}
	}
	return "", nil
}

func dropConnectionFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, _, inline := strings.Cut(args[i], "=")
		switch name {
		case "-a", "-t", "-c", "-config", "--config":
			if !inline {
				i++
			}
			continue
		}
		out = append(out, args[i])
	}
	return out
}
