package infra

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// UnavailableMessage is spoken when the remote intelligence keeps failing
// transiently until the retry budget runs out.
const UnavailableMessage = "O serviço de IA está indisponível no momento. Tente novamente mais tarde."

// Policy holds retry configuration for remote calls. The delay grows
// linearly: after failed attempt n the caller sleeps BaseDelay × n.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// RetryIf decides whether an error is worth another attempt.
	// Defaults to IsTransient.
	RetryIf func(error) bool

	// Sleep waits between attempts. Overridable in tests; defaults to a
	// context-aware time.After wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns the retry policy used when no configuration is given.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

// Do executes fn up to MaxAttempts times, sleeping BaseDelay × attempt
// between attempts. A non-retryable error aborts immediately; the last
// error is returned once attempts are exhausted.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	retryIf := p.RetryIf
	if retryIf == nil {
		retryIf = IsTransient
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = waitCtx
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !retryIf(lastErr) {
			return lastErr
		}

		if attempt == p.MaxAttempts {
			break
		}

		if err := sleep(ctx, p.BaseDelay*time.Duration(attempt)); err != nil {
			return err
		}
	}

	return lastErr
}

func waitCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// StatusError is a non-2xx reply from a remote API. The body is kept for
// diagnostics and scrubbed before it reaches the user.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// RetryableStatus reports whether an HTTP status signals a transient gateway
// failure.
func RetryableStatus(code int) bool {
	return code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

// IsTransient classifies an error as retryable: a gateway status error or a
// network timeout. Everything else (bad credentials, malformed requests,
// decode failures) is fatal and not retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return RetryableStatus(statusErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// ErrorDetail renders err for a user-facing message, replacing raw HTML
// gateway bodies and truncating long payloads. Cleanup only: failure
// classification never looks at the body.
func ErrorDetail(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("status %d: %s", statusErr.Code, scrubBody(statusErr.Body))
	}
	return err.Error()
}

const maxDetailLen = 200

func scrubBody(body string) string {
	s := strings.TrimSpace(body)
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "<!doctype html") || strings.Contains(lower, "<html") {
		return "(resposta HTML do gateway omitida)"
	}
	if len(s) > maxDetailLen {
		return s[:maxDetailLen] + "..."
	}
	return s
}
