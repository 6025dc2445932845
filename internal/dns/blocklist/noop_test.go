package blocklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/styxlabs/charon/internal/dns/domain"
)

func mustRule(t *testing.T) domain.BlockRule {
	t.Helper()
	r, err := domain.NewBlockRule("example.com", domain.BlockRuleExact, "test", time.Now())
	require.NoError(t, err)
	return r
}

func TestNoopAllowsEverything(t *testing.T) {
	var bl Noop
	if bl.Decide("anything.example.com").IsBlocked() {
		t.Fatal("Noop should never block")
	}
}

func TestNoopRejectsMutation(t *testing.T) {
	var bl Noop
	err := bl.AddRule(mustRule(t))
	require.Error(t, err, "Noop should reject AddRule")
}
