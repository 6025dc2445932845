package rdata

import (
	"fmt"
	"net"
)

// encodeAAAA encodes an AAAA record's presentation-form IPv6 address into
// its 16-byte wire representation.
func encodeAAAA(data string) ([]byte, error) {
	ip := net.ParseIP(data)
	if !isIPv6(ip) {
		return nil, fmt.Errorf("invalid AAAA record address: %q", data)
	}
	return ip.To16(), nil
}

func decodeAAAA(b []byte) (string, error) {
	if len(b) != 16 {
		return "", fmt.Errorf("invalid AAAA record length: %d", len(b))
	}
	return net.IP(b).String(), nil
}
