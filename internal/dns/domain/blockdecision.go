package domain

// BlockDecision is the outcome of consulting the blocklist for a query
// name, carrying enough detail for the control plane's blockstats command
// and the engine's logging without a second lookup.
type BlockDecision struct {
	Blocked   bool
	Rule      string        // the matched rule's name, empty when not blocked
	Kind      BlockRuleKind // the matched rule's kind, meaningless when not blocked
	FromCache bool          // decision served from the LRU decision cache
}

// EmptyDecision returns the zero-value "not blocked" decision.
func EmptyDecision() BlockDecision {
	return BlockDecision{}
}

// Blocked constructs a BlockDecision reporting a match against rule.
func Blocked(rule string, kind BlockRuleKind, fromCache bool) BlockDecision {
	return BlockDecision{Blocked: true, Rule: rule, Kind: kind, FromCache: fromCache}
}

// IsBlocked reports whether the query should be refused.
func (d BlockDecision) IsBlocked() bool {
	return d.Blocked
}
