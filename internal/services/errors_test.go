package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"harnessutil/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrNetwork, "notifications", "send", "post webhook", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"notifications", "send", "post webhook", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrConfiguration, "notifications", "", "webhook url not set", nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	if got, want := err.Error(), "configuration error: notifications: webhook url not set"; got != want {
		t.Fatalf("unexpected message: got %q want %q", got, want)
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "configuration", err: services.Wrap(services.ErrConfiguration, "config", "load", "", nil), want: services.ExitConfiguration},
		{name: "validation", err: services.Wrap(services.ErrValidation, "logs", "tail", "bad n", nil), want: services.ExitValidation},
		{name: "network", err: services.Wrap(services.ErrNetwork, "notifications", "send", "", errors.New("refused")), want: services.ExitNetwork},
		{name: "io", err: fmt.Errorf("reset: %w", services.Wrap(services.ErrIO, "fileutil", "mkdir", "", nil)), want: services.ExitIO},
		{name: "other", err: errors.New("unknown"), want: services.ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode() = %d, want %d", got, tc.want)
			}
		})
	}
}
