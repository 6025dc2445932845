package store

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/styxlabs/charon/internal/dns/domain"
)

// LoadZoneFile parses a zone file at path and inserts every valid line as a
// local record, returning the number of records accepted. Lines are
// whitespace-separated: "NAME TYPE RDATA [TTL]". A '#' or ';' as the first
// non-whitespace character starts a full-line comment; blank lines are
// ignored. A malformed line (wrong field count, unknown TYPE, bad TTL, or
// rdata that fails validation) is skipped silently rather than aborting
// the load, so one bad line never blocks the rest of the zone.
func (s *Store) LoadZoneFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		rr, ok := parseZoneLine(line)
		if !ok {
			continue
		}
		s.AddLocal(rr)
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, nil
}

// singleTokenRData is the set of types whose presentation-form rdata never
// contains whitespace, so a trailing TTL field is unambiguous for them.
// MX ("pref exchange") and SOA (7 fields) need every remaining field for
// their own rdata, so a zone line for those types never carries a TTL
// override; they fall back to the zero advisory TTL.
var singleTokenRData = map[domain.RRType]bool{
	domain.RRTypeA:     true,
	domain.RRTypeAAAA:  true,
	domain.RRTypeCNAME: true,
	domain.RRTypeNS:    true,
	domain.RRTypePTR:   true,
	domain.RRTypeTXT:   true,
}

// parseZoneLine parses one "NAME TYPE RDATA [TTL]" line.
func parseZoneLine(line string) (domain.LocalRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return domain.LocalRecord{}, false
	}

	name := fields[0]
	rtype, ok := domain.ParseRRType(strings.ToUpper(fields[1]))
	if !ok {
		return domain.LocalRecord{}, false
	}

	rest := fields[2:]
	ttl := uint32(0)
	if singleTokenRData[rtype] && len(rest) == 2 {
		v, err := strconv.ParseUint(rest[1], 10, 32)
		if err != nil {
			return domain.LocalRecord{}, false
		}
		ttl = uint32(v)
		rest = rest[:1]
	}
	rdata := strings.Join(rest, " ")
	if rdata == "" {
		return domain.LocalRecord{}, false
	}

	rr, err := domain.NewLocalRecord(name, rtype, rdata, ttl)
	if err != nil {
		return domain.LocalRecord{}, false
	}
	return rr, true
}
