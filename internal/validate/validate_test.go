// SPDX-License-Identifier: MIT
package validate

import (
	"errors"
	"testing"
	"time"
)

func TestOrigin(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"https origin", "https://example.com", false},
		{"http with port", "http://localhost:3000", false},
		{"empty", "", true},
		{"no scheme", "example.com", true},
		{"ftp scheme", "ftp://example.com", true},
		{"with path", "https://example.com/shop", true},
		{"with query", "https://example.com?x=1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Origin("origin", tt.value)
			if got := !v.IsValid(); got != tt.wantErr {
				t.Errorf("Origin(%q) error = %v, want %v (%v)", tt.value, got, tt.wantErr, v.Errors())
			}
		})
	}
}

func TestListenAddr(t *testing.T) {
	v := New()
	v.ListenAddr("a", ":8080")
	v.ListenAddr("b", "127.0.0.1:9090")
	if !v.IsValid() {
		t.Fatalf("expected valid listen addresses, got %v", v.Errors())
	}

	v.ListenAddr("c", "8080")
	v.ListenAddr("d", "")
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}
}

func TestRangesAndDurations(t *testing.T) {
	v := New()
	v.Range("r", 5, 1, 10)
	v.FloatRange("f", 0.5, 0, 1)
	v.MinDuration("d", time.Minute, time.Second)
	if !v.IsValid() {
		t.Fatalf("unexpected errors: %v", v.Errors())
	}

	v.Range("r", 11, 1, 10)
	v.FloatRange("f", 1.5, 0, 1)
	v.MinDuration("d", time.Millisecond, time.Second)
	if len(v.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(v.Errors()))
	}
}

func TestOneOf(t *testing.T) {
	v := New()
	v.OneOf("backend", "memory", []string{"memory", "redis"})
	v.OneOf("backend", "etcd", []string{"memory", "redis"})
	if len(v.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(v.Errors()))
	}
	if v.Errors()[0].Value != "etcd" {
		t.Errorf("expected offending value etcd, got %v", v.Errors()[0].Value)
	}
}

func TestIPOrCIDR(t *testing.T) {
	v := New()
	v.IPOrCIDR("whitelist", []string{"10.0.0.1", "192.168.0.0/16", " ", "::1"})
	if !v.IsValid() {
		t.Fatalf("unexpected errors: %v", v.Errors())
	}
	v.IPOrCIDR("whitelist", []string{"not-an-ip"})
	if v.IsValid() {
		t.Fatal("expected error for invalid entry")
	}
}

func TestValidationError_Aggregates(t *testing.T) {
	v := New()
	if v.Err() != nil {
		t.Fatal("expected nil error for empty validator")
	}
	v.AddError("a", "first", 1)
	v.AddError("b", "second", 2)

	err := v.Err()
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(ve.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(ve.Errors()))
	}
	want := "validation failed for a: first; validation failed for b: second"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WARN", false},
		{" error ", false},
		{"", true},
		{"verbose", true},
		{"trace", true},
		{"fatal", true},
	}

	for _, tt := range tests {
		v := New()
		v.LogLevel("Log.Level", tt.value)
		if got := !v.IsValid(); got != tt.wantErr {
			t.Errorf("LogLevel(%q) error = %v, want %v", tt.value, got, tt.wantErr)
		}
	}

	v := New()
	v.LogLevel("Log.Level", "verbose")
	if msg := v.Errors()[0].Message; msg != "must be one of debug, info, warn, error" {
		t.Errorf("message = %q", msg)
	}
}
