package recommend

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrUnknownGender means no model was built for the requested gender.
	// It signals a caller bug, not sparse data.
	ErrUnknownGender = errors.New("unknown gender")
)
