package blocklist

import (
	"fmt"

	"github.com/styxlabs/charon/internal/dns/common/names"
	"github.com/styxlabs/charon/internal/dns/domain"
)

// repository is the default Blocklist: a bbolt-backed rule store fronted
// by a bloom filter and an LRU decision cache. Decide consults them in
// that order so the common not-blocked case stays off the store.
type repository struct {
	store  *boltStore
	cache  *decisionCache
	bloom  *bloomFilter
	fpRate float64
}

// Options configures a persistent Blocklist.
type Options struct {
	DBPath      string
	CacheSize   int
	BloomFPRate float64
}

// Open builds a Blocklist backed by a bbolt database at opts.DBPath,
// loading any existing rules into a freshly sized bloom filter.
func Open(opts Options) (Blocklist, error) {
	store, err := openBoltStore(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("blocklist: opening store: %w", err)
	}
	cache, err := newDecisionCache(opts.CacheSize)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("blocklist: building decision cache: %w", err)
	}
	fpRate := opts.BloomFPRate
	if fpRate <= 0 {
		fpRate = 0.01
	}

	rules, err := store.All()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("blocklist: loading rules: %w", err)
	}
	bloom := newBloomFilter(uint(len(rules)), fpRate)
	for _, r := range rules {
		bloom.Add(r.Name)
	}

	return &repository{store: store, cache: cache, bloom: bloom, fpRate: fpRate}, nil
}

// Decide applies the bloom -> cache -> store pipeline described in the
// package doc.
func (r *repository) Decide(name string) domain.BlockDecision {
	canon := names.Canonical(name)
	chain := ancestorsOf(canon)

	if !r.bloom.MightContainAny(chain) {
		return domain.EmptyDecision()
	}

	if d, ok := r.cache.Get(canon); ok {
		d.FromCache = true
		return d
	}

	dec := r.consultStore(canon, chain)
	r.cache.Put(canon, dec)
	return dec
}

func (r *repository) consultStore(canon string, chain []string) domain.BlockDecision {
	if rule, found, err := r.store.MatchExact(canon); err == nil && found {
		return domain.Blocked(rule.Name, rule.Kind, false)
	}
	if rule, found, err := r.store.MatchSuffix(canon); err == nil && found {
		return domain.Blocked(rule.Name, rule.Kind, false)
	}
	return domain.EmptyDecision()
}

// AddRule persists r, grows the bloom filter, and invalidates cached
// decisions so the new rule takes effect on the next lookup.
func (r *repository) AddRule(rule domain.BlockRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if err := r.store.Put(rule); err != nil {
		return fmt.Errorf("blocklist: persisting rule: %w", err)
	}
	r.bloom.Add(rule.Name)
	r.cache.Purge()
	return nil
}

// RemoveRule deletes the rule at name. A bloom filter cannot un-learn a
// key, so a later lookup for a removed name still consults the store —
// correctly, since the store no longer has the rule.
func (r *repository) RemoveRule(name string) (bool, error) {
	existed, err := r.store.Delete(names.Canonical(name))
	if err != nil {
		return false, fmt.Errorf("blocklist: deleting rule: %w", err)
	}
	if existed {
		r.cache.Purge()
	}
	return existed, nil
}

func (r *repository) Stats() Stats {
	count, _ := r.store.Count()
	hits, misses := r.cache.Counters()
	return Stats{
		RuleCount:   count,
		CacheHits:   hits,
		CacheMisses: misses,
		CacheSize:   r.cache.Len(),
	}
}

func (r *repository) Close() error {
	return r.store.Close()
}

var _ Blocklist = (*repository)(nil)
