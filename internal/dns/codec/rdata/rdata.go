package rdata

import (
	"fmt"

	"github.com/styxlabs/charon/internal/dns/domain"
)

// Encode converts rtype's presentation-form text into its wire-format
// RDATA bytes.
func Encode(rtype domain.RRType, text string) ([]byte, error) {
	switch rtype {
	case domain.RRTypeA:
		return encodeA(text)
	case domain.RRTypeAAAA:
		return encodeAAAA(text)
	case domain.RRTypeNS:
		return encodeNS(text)
	case domain.RRTypeCNAME:
		return encodeCNAME(text)
	case domain.RRTypePTR:
		return encodePTR(text)
	case domain.RRTypeMX:
		return encodeMX(text)
	case domain.RRTypeSOA:
		return encodeSOA(text)
	case domain.RRTypeTXT:
		return encodeTXT(text)
	default:
		return nil, fmt.Errorf("rdata: encoding not supported for type %s", rtype)
	}
}

// Decode converts rtype's wire-format RDATA bytes into presentation-form
// text.
func Decode(rtype domain.RRType, b []byte) (string, error) {
	switch rtype {
	case domain.RRTypeA:
		return decodeA(b)
	case domain.RRTypeAAAA:
		return decodeAAAA(b)
	case domain.RRTypeNS:
		return decodeNS(b)
	case domain.RRTypeCNAME:
		return decodeCNAME(b)
	case domain.RRTypePTR:
		return decodePTR(b)
	case domain.RRTypeMX:
		return decodeMX(b)
	case domain.RRTypeSOA:
		return decodeSOA(b)
	case domain.RRTypeTXT:
		return decodeTXT(b)
	default:
		return "", fmt.Errorf("rdata: decoding not supported for type %s", rtype)
	}
}
