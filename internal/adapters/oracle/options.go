package oracle

import (
	"net/http"
	"time"

	"github.com/okian/lookbook/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout is kept.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds every oracle call.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithBreaker tunes the circuit breaker: the number of trial requests let
// through while half-open and how long it stays open before trying again.
func WithBreaker(maxRequests uint32, openTimeout time.Duration) Option {
	return func(cl *Client) {
		if maxRequests > 0 {
			cl.breakerMaxRequests = maxRequests
		}
		if openTimeout > 0 {
			cl.breakerTimeout = openTimeout
		}
	}
}

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n uint32) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.failureThreshold = n
		}
	}
}

// WithName sets the breaker name used in logs and metrics.
func WithName(name string) Option {
	return func(cl *Client) {
		if name != "" {
			cl.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}
