// Package oracle is the HTTP client for the external image label service.
// It posts an image and reads back {color, style, category, part}, any of
// which may be null.
package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/lookbook/internal/domain/types"
	"github.com/okian/lookbook/pkg/logger"
	"github.com/okian/lookbook/pkg/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultBreakerRequests  = 1
	defaultBreakerTimeout   = 30 * time.Second
	defaultFailureThreshold = 5
	maxErrorBody            = 512
	formField               = "file"
)

// response is the oracle wire shape.
type response struct {
	Color    *string `json:"color"`
	Style    *string `json:"style"`
	Category *string `json:"category"`
	Part     *string `json:"part"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r response) label() types.Label {
	return types.Label{
		Color:    deref(r.Color),
		Style:    deref(r.Style),
		Category: deref(r.Category),
		Part:     deref(r.Part),
	}
}

// Client calls the label oracle through a circuit breaker.
type Client struct {
	url     string
	http    *http.Client
	timeout time.Duration
	name    string
	logger  logger.Logger

	breakerMaxRequests uint32
	breakerTimeout     time.Duration
	failureThreshold   uint32

	cb *gobreaker.CircuitBreaker[types.Label]
}

// New returns a client posting to url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:                url,
		http:               &http.Client{},
		timeout:            defaultTimeout,
		name:               "label-oracle",
		breakerMaxRequests: defaultBreakerRequests,
		breakerTimeout:     defaultBreakerTimeout,
		failureThreshold:   defaultFailureThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}

	metrics.UpdateBreakerState(c.name, metrics.BreakerClosed)
	c.cb = gobreaker.NewCircuitBreaker[types.Label](gobreaker.Settings{
		Name:        c.name,
		MaxRequests: c.breakerMaxRequests,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.failureThreshold
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation is not an oracle failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, stateValue(to))
			if c.logger != nil {
				c.logger.Warn(context.Background(), "oracle breaker state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			}
		},
	})
	return c
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	default:
		return metrics.BreakerClosed
	}
}

// State returns the current breaker state.
func (c *Client) State() gobreaker.State { return c.cb.State() }

// Analyze posts image as the multipart field "file" and returns the label.
// Null attributes come back as empty strings; deciding whether the label
// is usable is left to the caller.
func (c *Client) Analyze(ctx context.Context, image []byte, filename string) (types.Label, error) {
	if c.url == "" {
		return types.Label{}, ErrNoEndpoint
	}
	if len(image) == 0 {
		return types.Label{}, ErrEmptyImage
	}

	start := time.Now()
	label, err := c.cb.Execute(func() (types.Label, error) {
		return c.analyze(ctx, image, filename)
	})
	metrics.RecordOracleLatency(float64(time.Since(start).Milliseconds()))

	switch {
	case err == nil:
		metrics.RecordOracleRequest("ok")
		return label, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordOracleRequest("rejected")
		return types.Label{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		metrics.RecordOracleRequest("error")
		if c.logger != nil {
			c.logger.Warn(ctx, "oracle call failed", logger.String("filename", filename), logger.Error(err))
		}
		return types.Label{}, err
	}
}

func (c *Client) analyze(ctx context.Context, image []byte, filename string) (types.Label, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, contentType, err := encodeImage(image, filename)
	if err != nil {
		return types.Label{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return types.Label{}, fmt.Errorf("build oracle request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Label{}, fmt.Errorf("oracle request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return types.Label{}, fmt.Errorf("%w: %d %s", ErrOracleStatus, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out response
	if err := json.NewDecoder(resp.Body).DecodeContext(ctx, &out); err != nil {
		return types.Label{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return out.label(), nil
}

func encodeImage(image []byte, filename string) (io.Reader, string, error) {
	if filename == "" {
		filename = "image"
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formField, filename))
	h.Set("Content-Type", http.DetectContentType(image))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
