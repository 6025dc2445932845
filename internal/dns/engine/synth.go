package engine

import (
	"time"

	"github.com/styxlabs/charon/internal/dns/codec"
	"github.com/styxlabs/charon/internal/dns/codec/rdata"
	"github.com/styxlabs/charon/internal/dns/domain"
)

// encodable reports whether a's RDATA can be wire-encoded, so the Engine
// can pre-validate an answer set and keep ANCOUNT accurate rather than
// aborting synthesis on the first bad record.
func encodable(a codec.Answer) bool {
	_, err := rdata.Encode(a.Type, a.RData)
	return err == nil
}

// synthLocal builds an authoritative response from the Store's local
// records for q. Records whose RDATA fails to encode are dropped before
// ANCOUNT is fixed, per the header-parsing design note on response
// synthesis: implementations must either pre-validate or truncate-and-
// correct, and this one pre-validates.
func synthLocal(q domain.Question, recs []domain.LocalRecord) ([]byte, error) {
	answers := make([]codec.Answer, 0, len(recs))
	for _, rr := range recs {
		a := codec.Answer{Name: rr.Name, Type: rr.Type, Class: rr.Class, TTL: rr.TTL, RData: rr.RData}
		if encodable(a) {
			answers = append(answers, a)
		}
	}
	return codec.EncodeResponse(q.ID, q, answers, domain.RCodeNoError, true)
}

// synthCached builds a non-authoritative response from live cache entries,
// each carrying its TTL as the remaining lifetime as of now, per
// invariant 3 (remaining_ttl visibility).
func synthCached(q domain.Question, entries []domain.CacheEntry, now time.Time) ([]byte, error) {
	answers := make([]codec.Answer, 0, len(entries))
	for _, e := range entries {
		ttl := uint32(e.Remaining(now) / time.Second)
		a := codec.Answer{Name: e.Name, Type: e.Type, Class: e.Class, TTL: ttl, RData: e.RData}
		if encodable(a) {
			answers = append(answers, a)
		}
	}
	return codec.EncodeResponse(q.ID, q, answers, domain.RCodeNoError, false)
}

// synthBlocked builds the NXDOMAIN (or, per configuration, REFUSED)
// response returned for a query the Blocklist rejects, bypassing local,
// cache, and forwarder entirely.
func synthBlocked(q domain.Question, rcode domain.RCode) ([]byte, error) {
	return codec.EncodeResponse(q.ID, q, nil, rcode, false)
}

// synthFailure builds a ServerFailure response carrying the query's ID and,
// when the question could be recovered, its echoed question section.
func synthFailure(h codec.Header, raw []byte) []byte {
	if q, err := codec.DecodeQuery(raw); err == nil {
		if resp, err := codec.EncodeResponse(h.ID, q, nil, domain.RCodeServFail, false); err == nil {
			return resp
		}
	}
	fh := codec.Header{ID: h.ID, QR: true, RA: true, RCode: domain.RCodeServFail}
	return fh.Serialize()
}

// synthFailureForQuestion builds a ServerFailure response when a question
// was already successfully decoded but some later step failed.
func synthFailureForQuestion(q domain.Question) []byte {
	if resp, err := codec.EncodeResponse(q.ID, q, nil, domain.RCodeServFail, false); err == nil {
		return resp
	}
	fh := codec.Header{ID: q.ID, QR: true, RA: true, RCode: domain.RCodeServFail}
	return fh.Serialize()
}
