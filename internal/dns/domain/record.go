package domain

import (
	"fmt"

	"github.com/styxlabs/charon/internal/dns/common/names"
)

// LocalRecord is an authoritative resource record loaded from a zone file
// or added via the control plane. Local records never expire: ttl is
// advisory and only ever surfaces in the wire response.
type LocalRecord struct {
	Name  string // canonical, presentation form
	Type  RRType
	Class RRClass
	RData string // presentation-form rdata, e.g. "192.168.1.10"
	TTL   uint32
}

// NewLocalRecord constructs and validates a LocalRecord. name is
// canonicalized before storage so invariant 2 (case-insensitive lookup)
// holds regardless of how the record was entered.
func NewLocalRecord(name string, rtype RRType, rdata string, ttl uint32) (LocalRecord, error) {
	rr := LocalRecord{
		Name:  names.Canonical(name),
		Type:  rtype,
		Class: RRClassIN,
		RData: rdata,
		TTL:   ttl,
	}
	if err := rr.Validate(); err != nil {
		return LocalRecord{}, err
	}
	return rr, nil
}

// Validate checks structural soundness. It does not re-validate RData
// against the per-type wire encoding; that happens at serialization time
// (spec §4.1/§4.5: a bad record is skipped during response synthesis, not
// rejected at insertion, except via the control plane's `add` command
// which does validate eagerly — see controlplane.Handler.add).
func (rr LocalRecord) Validate() error {
	if rr.Name != "" {
		if err := names.Validate(rr.Name); err != nil {
			return err
		}
	}
	if rr.RData == "" {
		return fmt.Errorf("record rdata must not be empty")
	}
	return nil
}

// CacheKey returns the Store lookup key for this record.
func (rr LocalRecord) CacheKey() string {
	return cacheKey(rr.Name, rr.Type)
}
