// -*- Mode: Go; indent-tabs-mode: t -*-

package ecsync

import "gopkg.in/retry.v1"

// retryStrategy bounds the RO-update retry loop to roRetries total
// attempts with no backoff delay, matching ec_sync.c's plain
// for-loop retry (spec.md §7: "at most two tries").
func retryStrategy() retry.Strategy {
	return retry.LimitCount(roRetries, retry.Regular{})
}
