package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{9625, "R$ 9625.00"},
		{37.5, "R$ 37.50"},
		{2.456, "R$ 2.46"},
		{0, "R$ 0.00"},
		{-150.5, "R$ -150.50"},
	}

	for _, tt := range tests {
		if got := FormatBRL(tt.amount); got != tt.want {
			t.Errorf("FormatBRL(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatBRLGrouped(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{1234567.89, "R$ 1.234.567,89"},
		{10000, "R$ 10.000,00"},
		{999.99, "R$ 999,99"},
		{0, "R$ 0,00"},
		{-1500, "-R$ 1.500,00"},
	}

	for _, tt := range tests {
		if got := FormatBRLGrouped(tt.amount); got != tt.want {
			t.Errorf("FormatBRLGrouped(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{5.25, "+5.25%"},
		{-3.1, "-3.10%"},
		{0, "0.00%"},
	}

	for _, tt := range tests {
		if got := FormatPercent(tt.value); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	var calls int
	err := Retry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned %v, want success", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	wantErr := errors.New("persistent")
	var calls int
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Retry returned %v, want %v", err, wantErr)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	err := Retry(ctx, DefaultRetryConfig(), func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry returned %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}
