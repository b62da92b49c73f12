package infra_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"assistente/internal/infra"
)

func fakeSleep(slept *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestPolicy_TransientThenSuccess(t *testing.T) {
	var slept []time.Duration
	policy := infra.Policy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		Sleep:       fakeSleep(&slept),
	}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls <= 2 {
			return &infra.StatusError{Code: 503, Body: "unavailable"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}

	// Linear backoff: 1×base after the first failure, 2×base after the second.
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("sleeps: got %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep %d: got %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestPolicy_ExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	policy := infra.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Sleep:       fakeSleep(&slept),
	}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return &infra.StatusError{Code: 502, Body: "bad gateway"}
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
	if len(slept) != 2 {
		t.Errorf("sleeps: got %d, want 2 (none after the last attempt)", len(slept))
	}
}

func TestPolicy_FatalStopsImmediately(t *testing.T) {
	policy := infra.Policy{MaxAttempts: 4, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return &infra.StatusError{Code: 401, Body: "invalid key"}
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestPolicy_CanceledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := infra.Policy{MaxAttempts: 3, BaseDelay: time.Minute}

	calls := 0
	err := policy.Do(ctx, func() error {
		calls++
		return &infra.StatusError{Code: 503, Body: "unavailable"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err: got %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"502", &infra.StatusError{Code: 502}, true},
		{"503", &infra.StatusError{Code: 503}, true},
		{"504", &infra.StatusError{Code: 504}, true},
		{"500", &infra.StatusError{Code: 500}, false},
		{"401", &infra.StatusError{Code: 401}, false},
		{"network timeout", timeoutErr{}, true},
		{"wrapped timeout", fmt.Errorf("request: %w", timeoutErr{}), true},
		{"deadline", context.DeadlineExceeded, true},
		{"plain", errors.New("boom"), false},
	}

	for _, tc := range cases {
		if got := infra.IsTransient(tc.err); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestErrorDetail_ScrubsHTML(t *testing.T) {
	err := &infra.StatusError{Code: 500, Body: "<!DOCTYPE html><html><body>Internal Server Error</body></html>"}
	detail := infra.ErrorDetail(err)

	if detail != "status 500: (resposta HTML do gateway omitida)" {
		t.Errorf("detail: got %q", detail)
	}
}

func TestErrorDetail_TruncatesLongBodies(t *testing.T) {
	body := ""
	for i := 0; i < 50; i++ {
		body += "0123456789"
	}
	detail := infra.ErrorDetail(&infra.StatusError{Code: 400, Body: body})

	if len(detail) > 250 {
		t.Errorf("detail not truncated: %d chars", len(detail))
	}
}
