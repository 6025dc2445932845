package rdata

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// encodeMX encodes an MX record's presentation form, "<preference> <exchange>"
// e.g. "10 mail.example.com", into its wire representation.
func encodeMX(data string) ([]byte, error) {
	parts := strings.Fields(data)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid MX rdata (want \"preference exchange\"): %q", data)
	}
	pref, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid MX preference: %q", parts[0])
	}
	exchange, err := encodeName(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid MX exchange: %w", err)
	}
	out := make([]byte, 2, 2+len(exchange))
	binary.BigEndian.PutUint16(out, uint16(pref))
	return append(out, exchange...), nil
}

func decodeMX(b []byte) (string, error) {
	if len(b) < 3 {
		return "", fmt.Errorf("invalid MX rdata length: %d", len(b))
	}
	pref := binary.BigEndian.Uint16(b[:2])
	exchange, err := decodeName(b[2:])
	if err != nil {
		return "", fmt.Errorf("invalid MX exchange: %w", err)
	}
	return fmt.Sprintf("%d %s", pref, exchange), nil
}
