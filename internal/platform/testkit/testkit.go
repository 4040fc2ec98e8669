// Package testkit holds small helpers shared across package tests
package testkit

import (
	"strings"
	"testing"
)

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic, got none", name)
		}
	}()
	fn()
}

// MustNotPanic fails the test if fn panics
func MustNotPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if v := recover(); v != nil {
			t.Fatalf("%s: unexpected panic: %v", name, v)
		}
	}()
	fn()
}

// MustContain fails the test unless s contains sub
func MustContain(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Fatalf("expected %q to contain %q", s, sub)
	}
}

// MustErr fails the test when err is nil
func MustErr(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

// MustNoErr fails the test when err is non-nil
func MustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
