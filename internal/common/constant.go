package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests
// and as gRPC metadata.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token in the authorization header.
const BearerPrefix = "Bearer "

// MaxUsernameLength is the upper bound for usernames, in bytes.
const MaxUsernameLength = 256
