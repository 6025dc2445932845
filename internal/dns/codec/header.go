// Package codec implements the DNS wire format (RFC 1035 section 4):
// message header, name compression, and the question/answer sections, on
// top of the rdata subpackage's per-type RDATA encoding.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/styxlabs/charon/internal/dns/domain"
)

// HeaderLen is the fixed size of a DNS message header in octets.
const HeaderLen = 12

// Header is the 12-byte section at the front of every DNS message.
type Header struct {
	ID      uint16
	QR      bool // query (false) or response (true)
	Opcode  uint8
	AA      bool // authoritative answer
	TC      bool // message truncated
	RD      bool // recursion desired
	RA      bool // recursion available
	RCode   domain.RCode
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// ParseHeader decodes the first 12 octets of a DNS message.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("codec: message shorter than header: %d octets", len(b))
	}
	flags := binary.BigEndian.Uint16(b[2:4])
	return Header{
		ID:      binary.BigEndian.Uint16(b[0:2]),
		QR:      flags&0x8000 != 0,
		Opcode:  uint8((flags >> 11) & 0x0F),
		AA:      flags&0x0400 != 0,
		TC:      flags&0x0200 != 0,
		RD:      flags&0x0100 != 0,
		RA:      flags&0x0080 != 0,
		RCode:   domain.RCode(flags & 0x000F),
		QDCount: binary.BigEndian.Uint16(b[4:6]),
		ANCount: binary.BigEndian.Uint16(b[6:8]),
		NSCount: binary.BigEndian.Uint16(b[8:10]),
		ARCount: binary.BigEndian.Uint16(b[10:12]),
	}, nil
}

// Serialize encodes h into its 12-octet wire representation.
func (h Header) Serialize() []byte {
	var flags uint16
	if h.QR {
		flags |= 0x8000
	}
	flags |= uint16(h.Opcode&0x0F) << 11
	if h.AA {
		flags |= 0x0400
	}
	if h.TC {
		flags |= 0x0200
	}
	if h.RD {
		flags |= 0x0100
	}
	if h.RA {
		flags |= 0x0080
	}
	flags |= uint16(h.RCode) & 0x000F

	out := make([]byte, HeaderLen)
	binary.BigEndian.PutUint16(out[0:2], h.ID)
	binary.BigEndian.PutUint16(out[2:4], flags)
	binary.BigEndian.PutUint16(out[4:6], h.QDCount)
	binary.BigEndian.PutUint16(out[6:8], h.ANCount)
	binary.BigEndian.PutUint16(out[8:10], h.NSCount)
	binary.BigEndian.PutUint16(out[10:12], h.ARCount)
	return out
}
