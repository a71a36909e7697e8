package config

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("ABP_EXPAND_A", "alpha")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "value: ${ABP_EXPAND_A}", "value: alpha"},
		{"unset becomes empty", "value: ${ABP_EXPAND_UNSET}", "value: "},
		{"default used when unset", "value: ${ABP_EXPAND_UNSET:-fallback}", "value: fallback"},
		{"default ignored when set", "value: ${ABP_EXPAND_A:-fallback}", "value: alpha"},
		{"no references", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("ABP_EXPAND_B", "beta")

	if _, err := ExpandEnvStrict("${ABP_EXPAND_MISSING}"); !errors.Is(err, ErrMissingEnvVar) {
		t.Errorf("err = %v, want ErrMissingEnvVar", err)
	}

	got, err := ExpandEnvStrict("${ABP_EXPAND_B}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict: %v", err)
	}
	if got != "beta" {
		t.Errorf("got %q", got)
	}
}

func TestExpandEnvRequired(t *testing.T) {
	t.Parallel()

	e := &envExpander{}
	_, err := e.Expand("${ABP_EXPAND_REQUIRED:?api key is required}")
	if !errors.Is(err, ErrMissingEnvVar) {
		t.Fatalf("err = %v, want ErrMissingEnvVar", err)
	}
	if !strings.Contains(err.Error(), "api key is required") {
		t.Errorf("error %q missing the custom message", err)
	}
}
