package constants

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Context keys
const (
	ContextKeyIdentity  = "identity"
	ContextKeyRequestID = "request_id"
)

// Headers
const (
	HeaderRequestID = "X-Request-ID"
	BearerPrefix    = "Bearer "
)

// Token types carried in the token_type claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)
