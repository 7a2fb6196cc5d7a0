package repository

import "errors"

// Sentinel kinds for load errors.
var (
	ErrLoadCorpus        = errors.New("load outfit corpus")
	ErrLoadIndex         = errors.New("load image index")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
