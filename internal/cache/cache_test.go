// Reelatlas - Movie Recommendation and Catalog Service
// Copyright 2026 Reelatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelatlas/reelatlas

package cache

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", http.StatusOK, []byte(`{"a":1}`), "etag1")
	entry, exists := c.Get("key1")
	if !exists {
		t.Fatal("Expected key1 to exist")
	}
	if entry.Status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", entry.Status)
	}
	if string(entry.Body) != `{"a":1}` {
		t.Errorf("Expected cached body, got %s", entry.Body)
	}
	if entry.ETag != "etag1" {
		t.Errorf("Expected etag1, got %s", entry.ETag)
	}

	_, exists = c.Get("key2")
	if exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(100 * time.Millisecond)

	c.Set("key1", http.StatusOK, []byte("body"), "e")

	_, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist immediately after set")
	}

	time.Sleep(150 * time.Millisecond)

	_, exists = c.Get("key1")
	if exists {
		t.Error("Expected key1 to be expired")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", http.StatusOK, []byte("body"), "e")
	c.Delete("key1")

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	c := New(1 * time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key%d", i), http.StatusOK, []byte("body"), "e")
	}

	c.Clear()

	for i := 0; i < 3; i++ {
		if _, exists := c.Get(fmt.Sprintf("key%d", i)); exists {
			t.Errorf("Expected key%d to be cleared", i)
		}
	}
}

func TestCacheStats(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", http.StatusOK, []byte("body"), "e")
	c.Get("key1") // hit
	c.Get("key2") // miss
	c.Get("key1") // hit

	stats := c.GetStats()
	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}

	rate := c.HitRate()
	want := 2.0 / 3.0 * 100.0
	if rate < want-0.01 || rate > want+0.01 {
		t.Errorf("Expected hit rate %.2f, got %.2f", want, rate)
	}
}

func TestCacheHitRateEmpty(t *testing.T) {
	c := New(1 * time.Minute)
	if rate := c.HitRate(); rate != 0.0 {
		t.Errorf("Expected 0 hit rate for empty cache, got %.2f", rate)
	}
}

func TestCacheCleanup(t *testing.T) {
	c := New(10 * time.Millisecond)

	c.Set("key1", http.StatusOK, []byte("body"), "e")
	time.Sleep(20 * time.Millisecond)

	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 0 {
		t.Errorf("Expected 0 keys after cleanup, got %d", stats.TotalKeys)
	}
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(1 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key%d", n%3)
			for j := 0; j < 100; j++ {
				c.Set(key, http.StatusOK, []byte("body"), "e")
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey("/api/v1/movie/search", "query=inception&tfidf_top_n=12")
	b := GenerateKey("/api/v1/movie/search", "query=inception&tfidf_top_n=12")
	if a != b {
		t.Error("Expected identical keys for identical inputs")
	}

	diff := GenerateKey("/api/v1/movie/search", "query=dune&tfidf_top_n=12")
	if a == diff {
		t.Error("Expected different keys for different queries")
	}

	plain := GenerateKey("/api/v1/health", "")
	if plain != "/api/v1/health" {
		t.Errorf("Expected bare path for empty query, got %s", plain)
	}
}
