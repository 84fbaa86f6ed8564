package common

// AuthorizationHeaderName carries the bearer token on inbound HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// PublicLinkPrefix is prepended to the random key of every public link.
const PublicLinkPrefix = "/api/files/public/"

// PublicLinkKeySize is the number of random bytes behind a public link key.
const PublicLinkKeySize = 16
