package thinktap

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

const defaultTraceMaxSize = 128

// TraceStore keeps recent reasoning results in memory so a downstream
// consumer can read captured thought content by name after the final
// answer was delivered through another channel. Entries are keyed by the
// call's identity (provider, model, input) and evicted by TTL and size.
type TraceStore struct {
	mu      sync.RWMutex
	traces  map[string]*storedTrace
	ttl     time.Duration
	maxSize int
	hits    int64
	misses  int64
}

type storedTrace struct {
	result    *ReasoningResult
	timestamp time.Time
}

// NewTraceStore creates a trace store with the specified TTL and max size.
func NewTraceStore(ttl time.Duration, maxSize int) *TraceStore {
	return &TraceStore{
		traces:  make(map[string]*storedTrace),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// traceKey generates a deterministic key from the call identity.
func traceKey(provider Provider, model, input string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(input))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get retrieves a stored result if present and not expired.
func (ts *TraceStore) Get(provider Provider, model, input string) (*ReasoningResult, bool) {
	key := traceKey(provider, model, input)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	stored, exists := ts.traces[key]
	if !exists {
		ts.misses++
		return nil, false
	}
	if time.Since(stored.timestamp) > ts.ttl {
		delete(ts.traces, key)
		ts.misses++
		return nil, false
	}

	ts.hits++
	return stored.result, true
}

// Put stores a result, evicting expired entries first and then the oldest
// entry when the store is full.
func (ts *TraceStore) Put(provider Provider, model, input string, result *ReasoningResult) {
	key := traceKey(provider, model, input)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.evictExpiredLocked()
	if len(ts.traces) >= ts.maxSize {
		ts.evictOldestLocked()
	}

	ts.traces[key] = &storedTrace{result: result, timestamp: time.Now()}
}

// Stats returns hit/miss counters and the current entry count.
func (ts *TraceStore) Stats() (hits, misses int64, size int) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.hits, ts.misses, len(ts.traces)
}

func (ts *TraceStore) evictExpiredLocked() {
	now := time.Now()
	for key, stored := range ts.traces {
		if now.Sub(stored.timestamp) > ts.ttl {
			delete(ts.traces, key)
		}
	}
}

func (ts *TraceStore) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, stored := range ts.traces {
		if oldestKey == "" || stored.timestamp.Before(oldest) {
			oldestKey = key
			oldest = stored.timestamp
		}
	}
	if oldestKey != "" {
		delete(ts.traces, oldestKey)
	}
}
