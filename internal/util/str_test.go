package util

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		input, expected string
	}{
		{"Old Mines", "old-mines"},
		{"  Sunken   Temple ", "sunken-temple"},
		{"old-mines", "old-mines"},
		{"Gas Rigs!", "gas-rigs"},
		{"", ""},
	}

	for k, v := range cases {
		if actual := Slugify(v.input); actual != v.expected {
			t.Errorf("case #%d: expected %q got %q", k, v.expected, actual)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		input    time.Duration
		expected string
	}{
		{80 * time.Minute, "1h20m"},
		{95 * time.Second, "1m35s"},
		{26*time.Hour + 30*time.Minute, "1d2h"},
	}

	for k, v := range cases {
		if actual := FormatDuration(v.input); actual != v.expected {
			t.Errorf("case #%d: expected %q got %q", k, v.expected, actual)
		}
	}
}

func TestErrPublic(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrPublic("nope"))
	if !errors.Is(err, ErrPublic("")) {
		t.Error("expected a wrapped ErrPublic to match")
	}

	if errors.Is(errors.New("nope"), ErrPublic("")) {
		t.Error("did not expect a plain error to match")
	}

	if ConcatErrors([]error{nil, nil}) != nil {
		t.Error("expected nil when all errors are nil")
	}

	if err := ConcatErrors([]error{errors.New("a"), nil, errors.New("b")}); err.Error() != "a; b" {
		t.Errorf("unexpected concatenation: %s", err)
	}
}
