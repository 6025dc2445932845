package codec

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/styxlabs/charon/internal/dns/common/names"
)

// maxPointerJumps bounds compression-pointer following so a malicious or
// corrupt upstream message cannot force an infinite loop.
const maxPointerJumps = 16

// EncodeName writes name into the message at the current length of buf,
// reusing an earlier occurrence via a compression pointer when one is
// known. compressed maps a canonical name to the offset at which it was
// first written in this message; callers pass the same map across every
// EncodeName call for a single message.
func EncodeName(buf []byte, name string, compressed map[string]int) ([]byte, error) {
	canon := names.Canonical(name)
	if canon == "" {
		return append(buf, 0), nil
	}

	if ptr, ok := compressed[canon]; ok && ptr <= 0x3FFF {
		return append(buf, 0xC0|byte(ptr>>8), byte(ptr)), nil
	}

	if len(buf) <= 0x3FFF {
		compressed[canon] = len(buf)
	}

	for _, label := range strings.Split(canon, ".") {
		if len(label) == 0 {
			return nil, fmt.Errorf("codec: empty label in name %q", name)
		}
		if len(label) > 63 {
			return nil, fmt.Errorf("codec: label too long: %q", label)
		}
		buf = append(buf, byte(len(label)))
		buf = append(buf, label...)
	}
	return append(buf, 0), nil
}

// DecodeName decodes a (possibly compressed) name starting at offset within
// msg, returning the name and the offset of the first byte after it. The
// returned offset always points past the name as it appears at offset,
// even when the name's labels are borrowed via a pointer elsewhere.
func DecodeName(msg []byte, offset int) (string, int, error) {
	var labels []string
	cursor := offset
	jumps := 0
	end := -1 // offset just past the name as first encountered, set on first pointer

	for {
		if cursor >= len(msg) {
			return "", 0, fmt.Errorf("codec: name offset %d out of bounds", cursor)
		}
		n := int(msg[cursor])
		switch {
		case n == 0:
			cursor++
			if end == -1 {
				end = cursor
			}
			return strings.Join(labels, "."), end, nil

		case n&0xC0 == 0xC0:
			if cursor+1 >= len(msg) {
				return "", 0, fmt.Errorf("codec: truncated compression pointer at %d", cursor)
			}
			jumps++
			if jumps > maxPointerJumps {
				return "", 0, fmt.Errorf("codec: too many compression pointer jumps")
			}
			ptr := int(binary.BigEndian.Uint16(msg[cursor:cursor+2]) & 0x3FFF)
			if end == -1 {
				end = cursor + 2
			}
			if ptr >= cursor {
				return "", 0, fmt.Errorf("codec: compression pointer does not point backward")
			}
			cursor = ptr

		case n&0xC0 != 0:
			return "", 0, fmt.Errorf("codec: reserved label length bits at %d", cursor)

		default:
			cursor++
			if cursor+n > len(msg) {
				return "", 0, fmt.Errorf("codec: label overruns message")
			}
			labels = append(labels, string(msg[cursor:cursor+n]))
			cursor += n
			if len(strings.Join(labels, ".")) > 255 {
				return "", 0, fmt.Errorf("codec: name exceeds 255 octets")
			}
		}
	}
}
