package blocklist

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/styxlabs/charon/internal/dns/domain"
)

// decisionCache is an LRU-bounded cache of recent block decisions, keyed
// by canonical query name, with hit/miss counters for blockstats.
type decisionCache struct {
	cache  *lru.Cache[string, domain.BlockDecision]
	hits   uint64
	misses uint64
}

func newDecisionCache(size int) (*decisionCache, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[string, domain.BlockDecision](size)
	if err != nil {
		return nil, err
	}
	return &decisionCache{cache: c}, nil
}

func (c *decisionCache) Get(name string) (domain.BlockDecision, bool) {
	d, ok := c.cache.Get(name)
	if ok {
		atomic.AddUint64(&c.hits, 1)
	} else {
		atomic.AddUint64(&c.misses, 1)
	}
	return d, ok
}

func (c *decisionCache) Put(name string, d domain.BlockDecision) {
	c.cache.Add(name, d)
}

func (c *decisionCache) Purge() {
	c.cache.Purge()
}

func (c *decisionCache) Len() int {
	return c.cache.Len()
}

func (c *decisionCache) Counters() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}
