// Package tracker counts cache and upstream outcomes per elevation provider.
package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks usage statistics per provider.
type Tracker struct {
	mu        sync.RWMutex
	providers map[string]*counters
}

type counters struct {
	cacheHits, cacheMisses atomic.Int64
	success, failure, zero atomic.Int64
}

// ProviderStats is a point-in-time copy of one provider's counters.
type ProviderStats struct {
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	APISuccess    int64 `json:"api_success"`
	APIFailures   int64 `json:"api_failures"`
	APIZeroResult int64 `json:"api_zero_result"`
}

// HitRate returns the cache hit rate in whole percent, 0 without lookups.
func (s ProviderStats) HitRate() int64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return s.CacheHits * 100 / total
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{providers: make(map[string]*counters)}
}

func (t *Tracker) forProvider(provider string) *counters {
	t.mu.RLock()
	c, ok := t.providers[provider]
	t.mu.RUnlock()
	if ok {
		return c
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok = t.providers[provider]; ok {
		return c
	}
	c = &counters{}
	t.providers[provider] = c
	return c
}

// TrackCacheHit counts a response served from the cache.
func (t *Tracker) TrackCacheHit(provider string) { t.forProvider(provider).cacheHits.Add(1) }

// TrackCacheMiss counts a lookup that had to go upstream.
func (t *Tracker) TrackCacheMiss(provider string) { t.forProvider(provider).cacheMisses.Add(1) }

func (t *Tracker) TrackAPISuccess(provider string) { t.forProvider(provider).success.Add(1) }

func (t *Tracker) TrackAPIFailure(provider string) { t.forProvider(provider).failure.Add(1) }

// TrackAPIZero counts successful responses that carried no usable data,
// e.g. an elevation lookup returning fewer points than requested.
func (t *Tracker) TrackAPIZero(provider string) { t.forProvider(provider).zero.Add(1) }

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]ProviderStats, len(t.providers))
	for name, c := range t.providers {
		out[name] = ProviderStats{
			CacheHits:     c.cacheHits.Load(),
			CacheMisses:   c.cacheMisses.Load(),
			APISuccess:    c.success.Load(),
			APIFailures:   c.failure.Load(),
			APIZeroResult: c.zero.Load(),
		}
	}
	return out
}
