package blocklist

import (
	"errors"

	"github.com/styxlabs/charon/internal/dns/domain"
)

var errNoBlocklistConfigured = errors.New("blocklist: not configured")

// Noop is the Blocklist used when neither a blocklist directory nor a
// blocklist database is configured: every name is allowed and mutation is
// rejected.
type Noop struct{}

func (Noop) Decide(string) domain.BlockDecision { return domain.EmptyDecision() }

func (Noop) AddRule(domain.BlockRule) error {
	return errNoBlocklistConfigured
}

func (Noop) RemoveRule(string) (bool, error) {
	return false, errNoBlocklistConfigured
}

func (Noop) Stats() Stats { return Stats{} }

func (Noop) Close() error { return nil }

var _ Blocklist = Noop{}
