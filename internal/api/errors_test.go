package api

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestStatusError(t *testing.T) {
	err := &StatusError{Code: 422, Message: "amount required"}
	if got := err.Error(); got != "server returned status 422: amount required" {
		t.Errorf("unexpected message: %q", got)
	}
	if err.NotFound() {
		t.Error("422 must not read as not-found")
	}
	if !(&StatusError{Code: 404}).NotFound() {
		t.Error("404 must read as not-found")
	}
	bare := &StatusError{Code: 500}
	if got := bare.Error(); got != "server returned status 500" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestIsConnectivity(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"status error", &StatusError{Code: 503}, false},
		{"wrapped status error", fmt.Errorf("update: %w", &StatusError{Code: 400}), false},
		{"econnrefused", syscall.ECONNREFUSED, true},
		{"wrapped econnreset", fmt.Errorf("list: %w", syscall.ECONNRESET), true},
		{"dns error", &net.DNSError{Err: "no such host", Name: "x"}, true},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("unreachable")}, true},
		{"mobile stack message", errors.New("Network request failed"), true},
		{"plain validation message", errors.New("Validation failed: amount required"), false},
		{"unrelated", errors.New("disk full"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectivity(tt.err); got != tt.expected {
				t.Errorf("IsConnectivity(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
