// Package rdata encodes and decodes the RDATA portion of a resource record
// between wire format and the presentation-form text Charon stores and
// logs, one file per record type.
package rdata

import (
	"fmt"
	"net"
	"strings"
)

// encodeName encodes name into wire format: length-prefixed labels
// terminated by a zero-length root label. It never emits a compression
// pointer; RDATA names inside Charon's own zone are short enough that the
// space saving does not justify the complexity, and message.go applies
// compression at the message level for the records that benefit most.
func encodeName(name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".")
	var out []byte
	if name != "" {
		for _, label := range strings.Split(name, ".") {
			if len(label) == 0 {
				return nil, fmt.Errorf("rdata: empty label in name %q", name)
			}
			if len(label) > 63 {
				return nil, fmt.Errorf("rdata: label too long: %q", label)
			}
			out = append(out, byte(len(label)))
			out = append(out, label...)
		}
	}
	out = append(out, 0)
	return out, nil
}

// decodeName decodes a length-prefixed label sequence starting at b[0].
// It does not follow compression pointers; callers that need compression
// support (message parsing of upstream answers) decode names at the
// message level instead.
func decodeName(b []byte) (string, error) {
	var labels []string
	for i := 0; i < len(b); {
		n := int(b[i])
		if n == 0 {
			return strings.Join(labels, "."), nil
		}
		if n&0xC0 != 0 {
			return "", fmt.Errorf("rdata: compression pointer not supported in this context")
		}
		i++
		if i+n > len(b) {
			return "", fmt.Errorf("rdata: label overruns rdata")
		}
		labels = append(labels, string(b[i:i+n]))
		i += n
	}
	return "", fmt.Errorf("rdata: name missing root label")
}

func isIPv4(ip net.IP) bool {
	return ip != nil && ip.To4() != nil
}

func isIPv6(ip net.IP) bool {
	return ip != nil && ip.To16() != nil && ip.To4() == nil
}
