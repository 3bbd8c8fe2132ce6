// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		envSet       bool
		want         string
	}{
		{
			name:         "environment variable set",
			key:          "INSTALLD_TEST_STRING",
			defaultValue: "default",
			envValue:     "from-env",
			envSet:       true,
			want:         "from-env",
		},
		{
			name:         "environment variable not set",
			key:          "INSTALLD_TEST_STRING_UNSET",
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "environment variable empty string",
			key:          "INSTALLD_TEST_STRING_EMPTY",
			defaultValue: "default",
			envValue:     "",
			envSet:       true,
			want:         "default",
		},
		{
			name:         "sensitive variable",
			key:          "INSTALLD_TEST_TOKEN",
			defaultValue: "default",
			envValue:     "secret123",
			envSet:       true,
			want:         "secret123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				t.Setenv(tt.key, tt.envValue)
			}
			if got := ParseString(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("ParseString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		envSet   bool
		want     int
	}{
		{name: "valid integer", envValue: "50051", envSet: true, want: 50051},
		{name: "invalid integer", envValue: "port", envSet: true, want: 7},
		{name: "unset", want: 7},
		{name: "empty", envValue: "", envSet: true, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				t.Setenv("INSTALLD_TEST_INT", tt.envValue)
			}
			if got := ParseInt("INSTALLD_TEST_INT", 7); got != tt.want {
				t.Errorf("ParseInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	t.Setenv("INSTALLD_TEST_DUR", "250ms")
	if got := ParseDuration("INSTALLD_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Errorf("ParseDuration() = %v, want 250ms", got)
	}

	t.Setenv("INSTALLD_TEST_DUR", "soon")
	if got := ParseDuration("INSTALLD_TEST_DUR", time.Second); got != time.Second {
		t.Errorf("ParseDuration() with invalid value = %v, want default", got)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"YES", true},
		{"1", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"maybe", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("INSTALLD_TEST_BOOL", tt.value)
			if got := ParseBool("INSTALLD_TEST_BOOL", true); got != tt.want {
				t.Errorf("ParseBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	t.Setenv("INSTALLD_TEST_FLOAT", "0.25")
	if got := ParseFloat("INSTALLD_TEST_FLOAT", 1); got != 0.25 {
		t.Errorf("ParseFloat() = %v, want 0.25", got)
	}
	t.Setenv("INSTALLD_TEST_FLOAT", "quarter")
	if got := ParseFloat("INSTALLD_TEST_FLOAT", 1); got != 1 {
		t.Errorf("ParseFloat() with invalid value = %v, want default", got)
	}
}
