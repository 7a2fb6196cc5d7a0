package oracle

import "errors"

// Sentinel kinds for oracle errors.
var (
	ErrNoEndpoint   = errors.New("oracle endpoint not configured")
	ErrEmptyImage   = errors.New("empty image")
	ErrOracleStatus = errors.New("oracle returned non-2xx status")
	ErrDecode       = errors.New("decode oracle response")
	ErrUnavailable  = errors.New("oracle unavailable")
)
