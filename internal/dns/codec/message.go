package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/styxlabs/charon/internal/dns/codec/rdata"
	"github.com/styxlabs/charon/internal/dns/domain"
)

// MaxUDPMessage is the largest response Charon will emit without setting
// the truncation bit, per RFC 1035 section 4.2.1's classic 512-octet UDP
// limit. Charon does not implement EDNS0, so this bound is unconditional.
const MaxUDPMessage = 512

// Answer is a single resource record ready for response synthesis: a name,
// type, class, TTL and its presentation-form RDATA.
type Answer struct {
	Name  string
	Type  domain.RRType
	Class domain.RRClass
	TTL   uint32
	RData string // presentation form; encoded via rdata.Encode at write time
}

// EncodeResponse serializes a complete response message: header, echoed
// question, and answer records. If the fully encoded message would exceed
// MaxUDPMessage, answers are dropped from the end and the TC bit is set,
// per invariant in spec section 4.1 (truncation, not silent drop-without-TC).
func EncodeResponse(id uint16, q domain.Question, answers []Answer, rcode domain.RCode, aa bool) ([]byte, error) {
	encodeAttempt := func(n int) ([]byte, bool, error) {
		compressed := map[string]int{}
		h := Header{
			ID:      id,
			QR:      true,
			AA:      aa,
			RD:      false,
			RA:      true,
			RCode:   rcode,
			QDCount: 1,
			ANCount: uint16(n),
		}
		buf := h.Serialize()

		var err error
		buf, err = SerializeQuestion(buf, q, compressed)
		if err != nil {
			return nil, false, err
		}

		for i := 0; i < n; i++ {
			a := answers[i]
			buf, err = EncodeName(buf, a.Name, compressed)
			if err != nil {
				return nil, false, err
			}
			buf = binary.BigEndian.AppendUint16(buf, uint16(a.Type))
			buf = binary.BigEndian.AppendUint16(buf, uint16(a.Class))
			buf = binary.BigEndian.AppendUint32(buf, a.TTL)

			rd, err := rdata.Encode(a.Type, a.RData)
			if err != nil {
				return nil, false, fmt.Errorf("codec: encoding rdata for %s %s: %w", a.Name, a.Type, err)
			}
			if len(rd) > 0xFFFF {
				return nil, false, fmt.Errorf("codec: rdata too large: %d octets", len(rd))
			}
			buf = binary.BigEndian.AppendUint16(buf, uint16(len(rd)))
			buf = append(buf, rd...)
		}
		return buf, len(buf) <= MaxUDPMessage, nil
	}

	buf, fits, err := encodeAttempt(len(answers))
	if err != nil {
		return nil, err
	}
	if fits {
		return buf, nil
	}

	// Binary-search down to the largest answer count that fits, then set TC.
	lo, hi := 0, len(answers)
	best := []byte(nil)
	for lo <= hi {
		mid := (lo + hi) / 2
		candidate, fits, err := encodeAttempt(mid)
		if err != nil {
			return nil, err
		}
		if fits {
			best = candidate
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best == nil {
		return nil, fmt.Errorf("codec: response header and question alone exceed %d octets", MaxUDPMessage)
	}
	best[2] |= 0x02 // TC bit
	return best, nil
}

// DecodeQuery parses a full query message: header plus its single question.
func DecodeQuery(msg []byte) (domain.Question, error) {
	h, err := ParseHeader(msg)
	if err != nil {
		return domain.Question{}, err
	}
	if h.QDCount != 1 {
		return domain.Question{}, fmt.Errorf("codec: expected exactly one question, got %d", h.QDCount)
	}
	q, _, err := ParseQuestion(msg, HeaderLen, h.ID)
	if err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// DecodedAnswer is a resource record parsed from an upstream response, with
// RDATA already converted to presentation-form text.
type DecodedAnswer struct {
	Name  string
	Type  domain.RRType
	Class domain.RRClass
	TTL   uint32
	RData string
}

// DecodeResponse parses a complete response message from an upstream
// forwarder: header, question, and answer records. Authority and additional
// sections are skipped; Charon's forwarder path only ever consults answers.
func DecodeResponse(msg []byte) (Header, []DecodedAnswer, error) {
	h, err := ParseHeader(msg)
	if err != nil {
		return Header{}, nil, err
	}

	offset := HeaderLen
	for i := 0; i < int(h.QDCount); i++ {
		_, next, err := ParseQuestion(msg, offset, h.ID)
		if err != nil {
			return Header{}, nil, fmt.Errorf("codec: decoding question %d: %w", i, err)
		}
		offset = next
	}

	answers := make([]DecodedAnswer, 0, h.ANCount)
	for i := 0; i < int(h.ANCount); i++ {
		a, next, err := parseRecord(msg, offset)
		if err != nil {
			return Header{}, nil, fmt.Errorf("codec: decoding answer %d: %w", i, err)
		}
		answers = append(answers, a)
		offset = next
	}

	return h, answers, nil
}

func parseRecord(msg []byte, offset int) (DecodedAnswer, int, error) {
	name, offset, err := DecodeName(msg, offset)
	if err != nil {
		return DecodedAnswer{}, 0, err
	}
	if offset+10 > len(msg) {
		return DecodedAnswer{}, 0, fmt.Errorf("codec: truncated record header")
	}
	rtype := domain.RRType(binary.BigEndian.Uint16(msg[offset : offset+2]))
	rclass := domain.RRClass(binary.BigEndian.Uint16(msg[offset+2 : offset+4]))
	ttl := binary.BigEndian.Uint32(msg[offset+4 : offset+8])
	rdlen := int(binary.BigEndian.Uint16(msg[offset+8 : offset+10]))
	offset += 10
	if offset+rdlen > len(msg) {
		return DecodedAnswer{}, 0, fmt.Errorf("codec: truncated rdata")
	}
	raw := msg[offset : offset+rdlen]
	rdStart := offset
	offset += rdlen

	var text string
	switch rtype {
	case domain.RRTypeCNAME, domain.RRTypeNS, domain.RRTypePTR:
		// The target name may use compression pointers into the rest of
		// the message, so it is decoded at the message level.
		text, _, err = DecodeName(msg, rdStart)
	default:
		text, err = rdata.Decode(rtype, raw)
	}
	if err != nil {
		// Unknown or malformed rdata; keep the hex so the record can still
		// be logged and counted. Known case: an MX or SOA answer whose
		// rdata names use compression pointers — rdata.Decode doesn't
		// follow pointers outside its own rdata slice. The hex text is
		// cached as is; it is not valid MX or SOA presentation form, so
		// engine/synth.go's encodable() check drops it from any response
		// served from the cache.
		text = fmt.Sprintf("%x", raw)
	}

	return DecodedAnswer{Name: name, Type: rtype, Class: rclass, TTL: ttl, RData: text}, offset, nil
}
