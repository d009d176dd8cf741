package exec

import "time"

// timeNow is swapped out in tests for deterministic scans.
var timeNow = time.Now

func nowRFC3339() string {
	return timeNow().UTC().Format(time.RFC3339)
}
