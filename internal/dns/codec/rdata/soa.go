package rdata

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// encodeSOA encodes an SOA record's presentation form,
// "<mname> <rname> <serial> <refresh> <retry> <expire> <minimum>", into its
// wire representation.
func encodeSOA(data string) ([]byte, error) {
	parts := strings.Fields(data)
	if len(parts) != 7 {
		return nil, fmt.Errorf("invalid SOA rdata (want 7 fields): %q", data)
	}
	mname, err := encodeName(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid SOA mname: %w", err)
	}
	rname, err := encodeName(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid SOA rname: %w", err)
	}
	nums := make([]byte, 20)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseUint(parts[2+i], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid SOA numeric field %q: %w", parts[2+i], err)
		}
		binary.BigEndian.PutUint32(nums[i*4:], uint32(v))
	}
	out := append(mname, rname...)
	return append(out, nums...), nil
}

func decodeSOA(b []byte) (string, error) {
	mname, err := decodeName(b)
	if err != nil {
		return "", fmt.Errorf("invalid SOA mname: %w", err)
	}
	off := encodedNameLen(mname)

	rname, err := decodeName(b[off:])
	if err != nil {
		return "", fmt.Errorf("invalid SOA rname: %w", err)
	}
	off += encodedNameLen(rname)

	if len(b[off:]) < 20 {
		return "", fmt.Errorf("SOA rdata missing numeric fields")
	}
	var nums [5]uint32
	for i := range nums {
		nums[i] = binary.BigEndian.Uint32(b[off+i*4 : off+(i+1)*4])
	}
	return fmt.Sprintf("%s %s %d %d %d %d %d", mname, rname, nums[0], nums[1], nums[2], nums[3], nums[4]), nil
}

// encodedNameLen returns the number of wire bytes a decoded presentation
// name occupied: one length byte per label plus the root terminator.
func encodedNameLen(name string) int {
	if name == "" {
		return 1
	}
	return len(name) + 2
}
