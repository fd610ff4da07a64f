// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

// Package cache provides a thread-safe short-TTL response cache.
//
// The cache stores fully marshaled HTTP response bodies keyed by request
// path + query so that repeated identical requests are served without
// re-running the recommendation pipeline or hitting TMDB. Entries expire
// after the configured TTL; a background goroutine sweeps expired entries.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// Entry is a cached HTTP response.
type Entry struct {
	// Status is the HTTP status code of the cached response.
	Status int

	// Body is the marshaled response payload.
	Body []byte

	// ETag is the entity tag computed for Body.
	ETag string

	// ExpiresAt is the absolute expiry time.
	ExpiresAt time.Time
}

// ResponseCache provides a thread-safe in-memory response cache with TTL
// support. Safe for concurrent access from multiple goroutines.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	stats   Stats
}

// Stats tracks cache performance counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a response cache with the given default TTL and starts a
// background cleanup goroutine that sweeps expired entries every minute.
// The goroutine runs for the cache (and process) lifetime.
func New(ttl time.Duration) *ResponseCache {
	c := &ResponseCache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		stats: Stats{
			LastCleanup: time.Now(),
		},
	}

	go c.cleanupLoop()

	return c
}

// Get retrieves a cached response by key. Expired entries are removed and
// reported as misses.
func (c *ResponseCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return Entry{}, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return Entry{}, false
	}

	c.recordHit()
	return entry, true
}

// Set stores a response with the default TTL.
func (c *ResponseCache) Set(key string, status int, body []byte, etag string) {
	c.SetWithTTL(key, status, body, etag, c.ttl)
}

// SetWithTTL stores a response with a custom TTL. An existing entry with the
// same key is overwritten.
func (c *ResponseCache) SetWithTTL(key string, status int, body []byte, etag string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{
		Status:    status,
		Body:      body,
		ETag:      etag,
		ExpiresAt: time.Now().Add(ttl),
	}

	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.mu.Unlock()
}

// Delete removes a specific entry. Safe to call for keys that do not exist.
func (c *ResponseCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.recordEviction()
}

// Clear removes all entries in a single atomic operation.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = 0
	c.stats.mu.Unlock()
}

// GetStats returns a snapshot of current cache statistics.
func (c *ResponseCache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *ResponseCache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// cleanupLoop periodically removes expired entries.
func (c *ResponseCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes all expired entries.
func (c *ResponseCache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	evictions := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
}

func (c *ResponseCache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

func (c *ResponseCache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

func (c *ResponseCache) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
}

// GenerateKey creates a cache key from the request path and raw query.
// The query is hashed so arbitrarily long parameter lists produce compact,
// collision-resistant keys.
func GenerateKey(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	hash := sha256.Sum256([]byte(rawQuery))
	return fmt.Sprintf("%s?%x", path, hash[:16])
}
