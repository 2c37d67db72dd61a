package offline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"walletsync/internal/api"
)

func TestShouldSaveOffline(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "network request failed message",
			err:      errors.New("Network request failed"),
			expected: true,
		},
		{
			name:     "validation error",
			err:      errors.New("Validation failed: amount required"),
			expected: false,
		},
		{
			name:     "connection refused errno",
			err:      fmt.Errorf("create expenses: %w", syscall.ECONNREFUSED),
			expected: true,
		},
		{
			name:     "dns failure",
			err:      &net.DNSError{Err: "no such host", Name: "api.example.com"},
			expected: true,
		},
		{
			name:     "request timeout",
			err:      fmt.Errorf("list expenses: %w", context.DeadlineExceeded),
			expected: true,
		},
		{
			name:     "server 400",
			err:      &api.StatusError{Code: 400, Message: "amount required"},
			expected: false,
		},
		{
			name:     "server 500",
			err:      &api.StatusError{Code: 500, Message: "internal error"},
			expected: false,
		},
		{
			name:     "wrapped status error",
			err:      fmt.Errorf("create expenses: %w", &api.StatusError{Code: 422}),
			expected: false,
		},
		{
			name:     "unrelated error",
			err:      errors.New("disk full"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSaveOffline(tt.err); got != tt.expected {
				t.Errorf("ShouldSaveOffline(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
