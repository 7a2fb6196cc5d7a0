package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotReady   = errors.New("recommender not loaded")
	ErrNoLabeler  = errors.New("no label oracle configured")
	ErrNoResolver = errors.New("no image resolver configured")
)
