package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/styxlabs/charon/internal/dns/domain"
)

// SerializeQuestion appends q's wire-format question section (QNAME, QTYPE,
// QCLASS) to buf.
func SerializeQuestion(buf []byte, q domain.Question, compressed map[string]int) ([]byte, error) {
	buf, err := EncodeName(buf, q.Name, compressed)
	if err != nil {
		return nil, fmt.Errorf("codec: encoding question name: %w", err)
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(q.Type))
	buf = binary.BigEndian.AppendUint16(buf, uint16(q.Class))
	return buf, nil
}

// ParseQuestion decodes the question section at offset, returning the
// Question (without ID, which the caller fills in from the header) and the
// offset of the first byte after it.
func ParseQuestion(msg []byte, offset int, id uint16) (domain.Question, int, error) {
	name, next, err := DecodeName(msg, offset)
	if err != nil {
		return domain.Question{}, 0, fmt.Errorf("codec: decoding question name: %w", err)
	}
	if next+4 > len(msg) {
		return domain.Question{}, 0, fmt.Errorf("codec: truncated question section")
	}
	qtype := domain.RRType(binary.BigEndian.Uint16(msg[next : next+2]))
	qclass := domain.RRClass(binary.BigEndian.Uint16(msg[next+2 : next+4]))
	q := domain.Question{ID: id, Name: name, Type: qtype, Class: qclass}
	return q, next + 4, nil
}
