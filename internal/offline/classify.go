package offline

import "walletsync/internal/api"

// ShouldSaveOffline is the policy gate between "queue it" and "tell the
// user". Only connectivity failures are recoverable by queuing; validation
// errors, auth errors and anything the server answered must surface
// immediately instead of sitting in the queue forever.
func ShouldSaveOffline(err error) bool {
	return api.IsConnectivity(err)
}
