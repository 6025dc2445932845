package domain

import (
	"time"

	"github.com/styxlabs/charon/internal/dns/common/clock"
)

// CacheEntry is a record learned from an upstream answer and held in the
// Store's bounded cache relation until its TTL expires.
type CacheEntry struct {
	Name       string // presentation form as given; CacheKey canonicalizes it
	Type       RRType
	Class      RRClass
	RData      string
	TTL        uint32
	InsertedAt time.Time
}

// NewCacheEntry constructs a CacheEntry stamped with now as its insertion
// time. ttl is the value taken from the upstream answer verbatim.
func NewCacheEntry(name string, rtype RRType, rdata string, ttl uint32, now time.Time) CacheEntry {
	return CacheEntry{
		Name:       name,
		Type:       rtype,
		Class:      RRClassIN,
		RData:      rdata,
		TTL:        ttl,
		InsertedAt: now,
	}
}

// Remaining returns the entry's remaining time to live as of now, per
// invariant 3: remaining = ttl - (now - inserted_at). It never returns a
// negative duration; callers compare against zero via IsLive instead.
func (e CacheEntry) Remaining(now time.Time) time.Duration {
	return clock.Remaining(now, e.InsertedAt, e.TTL)
}

// IsLive reports whether e still has positive remaining TTL as of now.
// Entries with remaining <= 0 are invisible to lookups even before the
// eviction sweep physically removes them.
func (e CacheEntry) IsLive(now time.Time) bool {
	return clock.Live(now, e.InsertedAt, e.TTL)
}

// CacheKey returns the Store lookup key for this entry.
func (e CacheEntry) CacheKey() string {
	return cacheKey(e.Name, e.Type)
}
