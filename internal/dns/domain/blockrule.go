package domain

import (
	"fmt"
	"time"

	"github.com/styxlabs/charon/internal/dns/common/names"
)

// BlockRuleKind distinguishes an exact-name match from a suffix match
// (the rule name and every subdomain of it).
type BlockRuleKind uint8

const (
	BlockRuleExact  BlockRuleKind = iota // matches only this name
	BlockRuleSuffix                      // matches this name and all subdomains
)

func (k BlockRuleKind) String() string {
	switch k {
	case BlockRuleExact:
		return "exact"
	case BlockRuleSuffix:
		return "suffix"
	default:
		return "unknown"
	}
}

// ParseBlockRuleKind converts a control-plane or blocklist-file token into
// a BlockRuleKind. The empty string defaults to suffix, matching the
// behavior of the one-name-per-line blocklist file format.
func ParseBlockRuleKind(s string) (BlockRuleKind, bool) {
	switch s {
	case "", "suffix":
		return BlockRuleSuffix, true
	case "exact":
		return BlockRuleExact, true
	default:
		return 0, false
	}
}

// BlockRule is a single entry in the blocklist: a name, whether it blocks
// just itself or the whole subtree beneath it, where it came from, and
// when it was ingested.
type BlockRule struct {
	Name    string // canonical, presentation form
	Kind    BlockRuleKind
	Source  string    // blocklist file path, or "control-plane" for operator-issued rules
	AddedAt time.Time // ingestion timestamp
}

// NewBlockRule constructs and validates a BlockRule.
func NewBlockRule(name string, kind BlockRuleKind, source string, addedAt time.Time) (BlockRule, error) {
	r := BlockRule{
		Name:    names.Canonical(name),
		Kind:    kind,
		Source:  source,
		AddedAt: addedAt,
	}
	if err := r.Validate(); err != nil {
		return BlockRule{}, err
	}
	return r, nil
}

// Validate reports whether r is structurally sound.
func (r BlockRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("block rule name must not be empty")
	}
	if err := names.Validate(r.Name); err != nil {
		return err
	}
	if r.Source == "" {
		return fmt.Errorf("block rule source must not be empty")
	}
	if r.AddedAt.IsZero() {
		return fmt.Errorf("block rule added_at must be set")
	}
	return nil
}

// Matches reports whether r blocks the query name qname.
func (r BlockRule) Matches(qname string) bool {
	qname = names.Canonical(qname)
	if qname == r.Name {
		return true
	}
	if r.Kind != BlockRuleSuffix {
		return false
	}
	suffix := "." + r.Name
	return len(qname) > len(suffix) && qname[len(qname)-len(suffix):] == suffix
}
