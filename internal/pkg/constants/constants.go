package constants

const (
	// Canonical value for any text field that is empty or cannot be normalized.
	Unspecified = "SIN ESPECIFICAR"

	CtxKeyRequestID = "request_id"
	HeaderRequestID = "X-Request-ID"

	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps offsets well inside int32 whatever the page size.
	MaxPage = 10_000_000
)
