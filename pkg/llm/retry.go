package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go"
)

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 3 * time.Second
	defaultBackoffFactor  = 2.0
)

// RetryConfig bounds how many times and how fast Do retries.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// RetryHandler runs operations under an exponential backoff policy. Only
// transient failures (retriable HTTP statuses, network-level errors) are
// retried; everything else surfaces immediately.
type RetryHandler struct {
	cfg RetryConfig
}

func NewRetryHandler(cfg RetryConfig) *RetryHandler {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = defaultBackoffFactor
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &RetryHandler{cfg: cfg}
}

// Do invokes fn until it succeeds, fails non-retriably, or the attempt
// budget runs out. Context cancellation during a backoff wait wins over the
// last attempt's error.
func (r *RetryHandler) Do(ctx context.Context, fn func() error) error {
	backoff := r.cfg.InitialBackoff

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= r.cfg.MaxRetries || !retriable(err) {
			return err
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = r.nextBackoff(backoff)
	}
}

func (r *RetryHandler) nextBackoff(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * r.cfg.Multiplier)
	if next > r.cfg.MaxBackoff {
		return r.cfg.MaxBackoff
	}
	return next
}

func retriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Temporary()
}
