// SPDX-License-Identifier: MIT

package validate

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLength(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Ada", ""},
		{"   ", "name is required"},
		{"A", "name must be at least 2 characters"},
		{strings.Repeat("x", 11), "name must be at most 10 characters"},
		{"Zoë", ""},
	}
	for _, tt := range tests {
		v := New()
		minLen := 2
		if strings.TrimSpace(tt.value) == "" {
			minLen = 1
		}
		v.Length("name", tt.value, minLen, 10)
		assert.Equal(t, tt.want, v.First(), "value %q", tt.value)
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"ada@example.com", "first.last+tag@sub.example.co.uk"}
	invalid := []string{"", "ada", "ada@localhost", "Ada <ada@example.com>", "ada@@example.com"}

	for _, e := range valid {
		v := New()
		v.Email("email", e)
		assert.True(t, v.IsValid(), "expected %q valid: %v", e, v.Errors())
	}
	for _, e := range invalid {
		v := New()
		v.Email("email", e)
		assert.False(t, v.IsValid(), "expected %q invalid", e)
	}
}

func TestPattern(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]{6,12}$`)
	v := New()
	v.Pattern("code", "ABC123", re, "has an invalid format")
	assert.True(t, v.IsValid())

	v.Pattern("code", "abc", re, "has an invalid format")
	assert.Equal(t, "code has an invalid format", v.First())
}
