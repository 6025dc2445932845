package domain

import "testing"

func TestBlockDecision(t *testing.T) {
	empty := EmptyDecision()
	if empty.IsBlocked() {
		t.Error("empty decision should not be blocked")
	}

	d := Blocked("ads.example.com", BlockRuleSuffix, true)
	if !d.IsBlocked() {
		t.Error("decision should be blocked")
	}
	if d.Rule != "ads.example.com" {
		t.Errorf("Rule = %q, want ads.example.com", d.Rule)
	}
	if d.Kind != BlockRuleSuffix {
		t.Errorf("Kind = %v, want BlockRuleSuffix", d.Kind)
	}
	if !d.FromCache {
		t.Error("FromCache should be true")
	}
}
