// SPDX-License-Identifier: MIT

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
			key:          "TEST_STRING",
			defaultValue: "default",
			envValue:     "from-env",
			envSet:       true,
			want:         "from-env",
		},
		{
			name:         "environment variable not set",
			key:          "TEST_STRING_UNSET",
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "environment variable empty string",
			key:          "TEST_STRING_EMPTY",
			defaultValue: "default",
			envValue:     "",
			envSet:       true,
			want:         "default",
		},
		{
			name:         "sensitive variable (password)",
			key:          "TEST_PASSWORD",
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
		{"valid integer", "42", true, 42},
		{"negative integer", "-3", true, -3},
		{"invalid integer", "forty-two", true, 7},
		{"empty", "", true, 7},
		{"unset", "", false, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				t.Setenv("TEST_INT", tt.envValue)
			}
			if got := ParseInt("TEST_INT", 7); got != tt.want {
				t.Errorf("ParseInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	if got := ParseDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("ParseDuration() = %v, want 90s", got)
	}

	t.Setenv("TEST_DURATION", "soon")
	if got := ParseDuration("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("ParseDuration() with invalid input = %v, want default", got)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"YES", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"maybe", true}, // falls back to default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			if got := ParseBool("TEST_BOOL", true); got != tt.want {
				t.Errorf("ParseBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	if got := ParseFloat("TEST_FLOAT", 1); got != 0.25 {
		t.Errorf("ParseFloat() = %v, want 0.25", got)
	}
	t.Setenv("TEST_FLOAT", "abc")
	if got := ParseFloat("TEST_FLOAT", 1); got != 1 {
		t.Errorf("ParseFloat() with invalid input = %v, want default", got)
	}
}

func TestParseList(t *testing.T) {
	t.Setenv("TEST_LIST", " a, b ,,c ")
	got := ParseList("TEST_LIST", nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("ParseList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	def := []string{"x"}
	if got := ParseList("TEST_LIST_UNSET", def); len(got) != 1 || got[0] != "x" {
		t.Errorf("ParseList() unset = %v, want default", got)
	}
}
