package config

import (
	"errors"

	"github.com/dmitrijs2005/pakegate/internal/flagx"
)

const envPrefix = "PAKEGATE_"

// parseEnv overlays PAKEGATE_* variables, e.g. PAKEGATE_STORAGE or
// PAKEGATE_SESSION_TTL=90s. Malformed numbers and durations are reported.
func parseEnv(config *Config) error {
	return parseEnvFrom(flagx.NewEnv(envPrefix), config)
}

func parseEnvFrom(env *flagx.Env, config *Config) error {
	env.String(&config.EndpointAddrHTTP, "HTTP_ADDR")
	env.String(&config.EndpointAddrGRPC, "GRPC_ADDR")
	env.String(&config.LogLevel, "LOG_LEVEL")
	env.String(&config.Storage, "STORAGE")
	env.String(&config.DatabaseDSN, "DATABASE_DSN")
	env.String(&config.S3AccessKey, "S3_ACCESS_KEY")
	env.String(&config.S3SecretKey, "S3_SECRET_KEY")
	env.String(&config.S3Bucket, "S3_BUCKET")
	env.String(&config.S3Region, "S3_REGION")
	env.String(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	env.String(&config.S3Prefix, "S3_PREFIX")
	env.String(&config.RedisAddr, "REDIS_ADDR")
	env.String(&config.RedisPassword, "REDIS_PASSWORD")
	env.String(&config.Suite, "SUITE")
	env.String(&config.ServerKey, "SERVER_KEY")
	env.String(&config.ServerID, "SERVER_ID")
	env.String(&config.RFCPrivateKey, "RFC_PRIVATE_KEY")
	env.String(&config.RFCPublicKey, "RFC_PUBLIC_KEY")
	env.String(&config.RFCOPRFSeed, "RFC_OPRF_SEED")
	env.String(&config.SecretKey, "SECRET_KEY")

	return errors.Join(
		env.Int(&config.RedisDB, "REDIS_DB"),
		env.Int(&config.RateLimitStarts, "RATE_LIMIT_STARTS"),
		env.Int(&config.MaxSessions, "MAX_SESSIONS"),
		env.Duration(&config.RateLimitWindow, "RATE_LIMIT_WINDOW"),
		env.Duration(&config.SessionTTL, "SESSION_TTL"),
		env.Duration(&config.SweepInterval, "SWEEP_INTERVAL"),
		env.Duration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_VALIDITY"),
	)
}
