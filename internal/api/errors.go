package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// StatusError is returned when the server responded but rejected the
// request. It is by definition not a connectivity failure: the network
// worked, the payload or state did not.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Message)
}

// NotFound reports whether the server said the target no longer exists,
// which the replayer treats as an already-applied delete.
func (e *StatusError) NotFound() bool {
	return e.Code == 404
}

// connectivityPhrases covers transport failures that surface as plain
// message strings, including the "Network request failed" text mobile HTTP
// stacks produce.
var connectivityPhrases = []string{
	"network request failed",
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"unexpected eof",
}

// IsConnectivity reports whether err means the server could not be reached
// at all. Only these failures are worth queuing a mutation for; anything
// the server actually answered is permanent and must surface to the user.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
		syscall.EPIPE,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range connectivityPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
