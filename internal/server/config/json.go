package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pakegate/internal/flagx"
	"github.com/dmitrijs2005/pakegate/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields let a
// file override only what it mentions; durations accept "90s" or nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP *string `json:"endpoint_addr_http"`
	EndpointAddrGRPC *string `json:"endpoint_addr_grpc"`
	LogLevel         *string `json:"log_level"`

	Storage     *string `json:"storage"`
	DatabaseDSN *string `json:"database_dsn"`

	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3Prefix       *string `json:"s3_prefix"`

	RedisAddr       *string         `json:"redis_addr"`
	RedisPassword   *string         `json:"redis_password"`
	RedisDB         *int            `json:"redis_db"`
	RateLimitStarts *int            `json:"rate_limit_starts"`
	RateLimitWindow *timex.Duration `json:"rate_limit_window"`

	Suite         *string `json:"suite"`
	ServerKey     *string `json:"server_key"`
	ServerID      *string `json:"server_id"`
	RFCPrivateKey *string `json:"rfc_private_key"`
	RFCPublicKey  *string `json:"rfc_public_key"`
	RFCOPRFSeed   *string `json:"rfc_oprf_seed"`

	SessionTTL    *timex.Duration `json:"session_ttl"`
	SweepInterval *timex.Duration `json:"sweep_interval"`
	MaxSessions   *int            `json:"max_sessions"`

	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
}

// parseJson overlays the file named by -c/-config in args onto config.
// Without the flag nothing happens. Unreadable or invalid files panic.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3Prefix, c.S3Prefix)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.Suite, c.Suite)
	setString(&config.ServerKey, c.ServerKey)
	setString(&config.ServerID, c.ServerID)
	setString(&config.RFCPrivateKey, c.RFCPrivateKey)
	setString(&config.RFCPublicKey, c.RFCPublicKey)
	setString(&config.RFCOPRFSeed, c.RFCOPRFSeed)
	setString(&config.SecretKey, c.SecretKey)

	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.RateLimitStarts != nil {
		config.RateLimitStarts = *c.RateLimitStarts
	}
	if c.MaxSessions != nil {
		config.MaxSessions = *c.MaxSessions
	}
	if c.RateLimitWindow != nil {
		config.RateLimitWindow = c.RateLimitWindow.Duration
	}
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
