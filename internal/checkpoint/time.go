package checkpoint

import "time"

// timeNow is swapped out in tests for deterministic timestamps.
var timeNow = time.Now

func now() string {
	return timeNow().UTC().Format(time.RFC3339)
}
