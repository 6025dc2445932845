// Package blocklist consults a persisted set of blocked names ahead of
// Charon's three-tier lookup pipeline. A name that matches a block rule is
// answered with the Engine's block RCODE (NXDOMAIN by default, REFUSED when
// so configured) before the Store or Forwarder is ever touched.
// The lookup path is bloom filter -> decision cache -> persistent store,
// so the common case (a name that is not blocked) never opens a bbolt
// transaction.
package blocklist

import "github.com/styxlabs/charon/internal/dns/domain"

// Stats summarizes the blocklist's current size and decision-cache
// effectiveness, surfaced by the control plane's blockstats command.
type Stats struct {
	RuleCount   int
	CacheHits   uint64
	CacheMisses uint64
	CacheSize   int
}

// Blocklist decides whether a query name should be refused.
type Blocklist interface {
	Decide(name string) domain.BlockDecision
	AddRule(r domain.BlockRule) error
	RemoveRule(name string) (bool, error)
	Stats() Stats
	Close() error
}
