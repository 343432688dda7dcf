package lock

import (
	"context"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	holders = map[string]struct{}{}
)

func acquire(key string) bool {
	mu.Lock()
	defer mu.Unlock()
	if _, held := holders[key]; held {
		return false
	}
	holders[key] = struct{}{}
	return true
}

func release(key string) {
	mu.Lock()
	defer mu.Unlock()
	delete(holders, key)
}

// WithDelay runs safeCode while holding the in-process lock for key,
// waiting up to wait for the current holder to finish. Returns false
// without running safeCode when the wait or the context runs out.
func WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	deadline := time.After(wait)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for !acquire(key) {
		select {
		case <-deadline:
			return false, nil
		case <-ctx.Done():
			return false, nil
		case <-ticker.C:
		}
	}
	defer release(key)
	return true, safeCode()
}
