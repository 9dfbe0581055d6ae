package assist

import "errors"

// Common errors returned by Reranker implementations
var (
	// ErrAssistFailed is returned when the assist call fails for any general reason.
	ErrAssistFailed = errors.New("external assist call failed")

	// ErrInvalidResponse is returned when the assist response cannot be parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from external assist")

	// ErrInvalidConfig is returned when the assist configuration is invalid.
	ErrInvalidConfig = errors.New("invalid assist configuration")
)
