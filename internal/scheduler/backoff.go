package scheduler

import "time"

// backoffTable maps a retry count to the delay before the next attempt.
// The first three attempts retry quickly; later attempts back off up to
// the saturation value, bounding worst-case staleness growth without
// hot-looping on a persistently failing entity.
var backoffTable = []time.Duration{
	5 * time.Second,
	5 * time.Second,
	5 * time.Second,
	10 * time.Second,
	15 * time.Second,
	30 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	30 * time.Minute,
	1 * time.Hour,
	4 * time.Hour,
	13 * time.Hour,
}

// BackoffDelay returns the retry delay for the given retry count,
// saturating at the table's maximum.
func BackoffDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount >= len(backoffTable) {
		retryCount = len(backoffTable) - 1
	}

	return backoffTable[retryCount]
}
