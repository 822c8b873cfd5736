package utils

import (
	"testing"
	"time"
)

var globalCacheDuration = 5 * time.Minute

// GlobalCacheDuration is the lifetime of in-memory caches. Tests get a tiny one so that
// cached values never leak between test cases.
func GlobalCacheDuration() time.Duration {
	if testing.Testing() {
		return time.Microsecond
	}

	return globalCacheDuration
}
