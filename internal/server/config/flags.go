package config

import (
	"flag"

	"github.com/dmitrijs2005/pakegate/internal/flagx"
)

// parseFlags overlays the command-line flags this package owns.
//
//	-a string    HTTP bind address (e.g. ":8080")
//	-g string    gRPC bind address, empty disables gRPC
//	-l string    log level
//	-storage     storage backend: memory, postgres, s3
//	-d string    PostgreSQL DSN
//	-r string    redis address, empty disables rate limiting
//	-suite       handshake suite: sigma, rfc
//	-k string    server key secret (sigma suite)
//	-s string    JWT HMAC secret, empty disables access tokens
//	-ttl         in-flight session lifetime (e.g. "2m")
//	-t           access token lifetime (e.g. "15m")
//
// Arguments are filtered through flagx.FilterArgs first so other
// components can own their own flags. Parse errors panic.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-l", "-storage", "-d", "-r", "-suite", "-k", "-s", "-ttl", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.Storage, "storage", config.Storage, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.Suite, "suite", config.Suite, "handshake suite")
	fs.StringVar(&config.ServerKey, "k", config.ServerKey, "server key secret")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")
	fs.DurationVar(&config.SessionTTL, "ttl", config.SessionTTL, "session ttl")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
