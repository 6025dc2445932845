// Package store holds Charon's two keyed relations: authoritative local
// records loaded from zone files or added at the control plane, and a
// bounded, TTL-accounted cache of forwarded answers. Both relations are
// touched only from the Engine's single thread; the package does no
// internal locking (see the concurrency model in the top-level design doc).
package store

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/styxlabs/charon/internal/dns/common/clock"
	"github.com/styxlabs/charon/internal/dns/common/names"
	"github.com/styxlabs/charon/internal/dns/domain"
)

// DefaultMaxCacheEntries bounds the cache's LRU backing store when the
// configuration does not set max_cache_entries explicitly.
const DefaultMaxCacheEntries = 4096

// Store is the single in-process holder of local zone data and the
// forwarded-answer cache.
type Store struct {
	clock clock.Clock

	local     map[string][]domain.LocalRecord
	localName map[string]int // canonical name -> count of local records owned, any type
	cache     *lru.Cache[string, []domain.CacheEntry]
}

// New returns an empty Store. maxCacheEntries bounds the number of distinct
// (name, type) cache keys; 0 or negative selects DefaultMaxCacheEntries.
func New(c clock.Clock, maxCacheEntries int) (*Store, error) {
	if maxCacheEntries <= 0 {
		maxCacheEntries = DefaultMaxCacheEntries
	}
	cache, err := lru.New[string, []domain.CacheEntry](maxCacheEntries)
	if err != nil {
		return nil, fmt.Errorf("store: building cache: %w", err)
	}
	return &Store{
		clock:     c,
		local:     make(map[string][]domain.LocalRecord),
		localName: make(map[string]int),
		cache:     cache,
	}, nil
}

func localKey(name string, t domain.RRType) string {
	return names.Canonical(name) + "|" + t.String()
}

// AddLocal appends a local record under its (name, type) key. It never
// deduplicates: a second record with the same key grows the RRset.
func (s *Store) AddLocal(rr domain.LocalRecord) {
	key := rr.CacheKey()
	s.local[key] = append(s.local[key], rr)
	s.localName[names.Canonical(rr.Name)]++
}

// LookupLocal returns every local record matching (name, type). A nil or
// empty slice means a miss.
func (s *Store) LookupLocal(name string, t domain.RRType) []domain.LocalRecord {
	return s.local[localKey(name, t)]
}

// HasAnyLocal reports whether name owns any local record of any type,
// letting the Engine distinguish NXDOMAIN from NODATA for a locally owned
// name.
func (s *Store) HasAnyLocal(name string) bool {
	return s.localName[names.Canonical(name)] > 0
}

// DeleteLocal removes every local record with the given (name, type) key.
// It reports how many records were removed.
func (s *Store) DeleteLocal(name string, t domain.RRType) int {
	key := localKey(name, t)
	n := len(s.local[key])
	if n == 0 {
		return 0
	}
	delete(s.local, key)
	s.localName[names.Canonical(name)] -= n
	if s.localName[names.Canonical(name)] <= 0 {
		delete(s.localName, names.Canonical(name))
	}
	return n
}

// ClearLocal discards every local record, used by the Engine's zone-file
// hot-reload: the zone file is re-parsed from scratch and its records
// replace whatever was previously loaded.
func (s *Store) ClearLocal() {
	s.local = make(map[string][]domain.LocalRecord)
	s.localName = make(map[string]int)
}

// CacheRecord inserts a forwarded answer into the cache, stamped with the
// current time. A second record under the same key is appended to the
// existing RRset rather than replacing it, mirroring AddLocal's semantics;
// callers that fully refresh an RRset should flush the key first via
// ReplaceCache.
func (s *Store) CacheRecord(e domain.CacheEntry) {
	key := e.CacheKey()
	existing, _ := s.cache.Get(key)
	s.cache.Add(key, append(existing, e))
}

// ReplaceCache overwrites the RRset at a cache key with exactly entries,
// used when the Engine caches a whole forwarded answer set for one
// question in a single step.
func (s *Store) ReplaceCache(entries []domain.CacheEntry) {
	if len(entries) == 0 {
		return
	}
	key := entries[0].CacheKey()
	s.cache.Add(key, entries)
}

// LookupCache returns the entries for (name, type) that are live as of now,
// per invariant 3; callers derive each entry's remaining TTL with
// CacheEntry.Remaining. Expired entries are dropped from the returned slice
// and from the cache itself.
func (s *Store) LookupCache(name string, t domain.RRType, now time.Time) []domain.CacheEntry {
	key := localKey(name, t)
	entries, ok := s.cache.Get(key)
	if !ok {
		return nil
	}
	live := make([]domain.CacheEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsLive(now) {
			live = append(live, e)
		}
	}
	if len(live) == 0 {
		s.cache.Remove(key)
		return nil
	}
	s.cache.Add(key, live)
	return live
}

// FlushCache deletes every cache entry.
func (s *Store) FlushCache() {
	s.cache.Purge()
}

// EvictExpired deletes cache entries whose remaining TTL has reached zero
// as of now, returning the number of entries removed.
func (s *Store) EvictExpired(now time.Time) int {
	removed := 0
	for _, key := range s.cache.Keys() {
		entries, ok := s.cache.Peek(key)
		if !ok {
			continue
		}
		live := make([]domain.CacheEntry, 0, len(entries))
		for _, e := range entries {
			if e.IsLive(now) {
				live = append(live, e)
			} else {
				removed++
			}
		}
		if len(live) == 0 {
			s.cache.Remove(key)
		} else if len(live) != len(entries) {
			s.cache.Add(key, live)
		}
	}
	return removed
}

// CacheCount returns the total number of cache entries currently held,
// live and expired, across every key.
func (s *Store) CacheCount() int {
	n := 0
	for _, key := range s.cache.Keys() {
		entries, ok := s.cache.Peek(key)
		if !ok {
			continue
		}
		n += len(entries)
	}
	return n
}

// Now returns the Store's notion of the current time, delegating to its
// injected clock so TTL behavior is deterministic under test.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}
