package cache

import (
	"fmt"
	"strings"
)

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

// IngestLockKey names the lock that serializes ingestion batches. All
// batches share one lock because they write to the same table.
func IngestLockKey(scope string) string {
	if scope == "" {
		scope = "companies"
	}
	return fmt.Sprintf("lock:ingest:%s", strings.ToLower(scope))
}
