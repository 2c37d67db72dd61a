package offline

import (
	"crypto/rand"
	"fmt"
	"time"

	"walletsync/internal/core"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateLocalID returns a fresh device-local identifier of the form
// offline_<epoch-millis>_<9 random base36 chars>. The prefix keeps it
// unambiguously distinct from server ids; the random suffix keeps two
// creates inside the same millisecond distinct.
func GenerateLocalID() string {
	return fmt.Sprintf("%s%d_%s", core.LocalIDPrefix, time.Now().UnixMilli(), randBase36(9))
}

func randBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand on a device does not fail in practice; a panic here
		// beats silently reusing identifiers.
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}
	return string(buf)
}
