package controlplane

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/styxlabs/charon/internal/dns/blocklist"
	rdatacodec "github.com/styxlabs/charon/internal/dns/codec/rdata"
	"github.com/styxlabs/charon/internal/dns/domain"
	"github.com/styxlabs/charon/internal/dns/store"
)

// Handler dispatches the control-plane command grammar (flush, evict,
// stats, add, del, block, unblock, blockstats) against a Store and a
// Blocklist. It implements Dispatcher.
type Handler struct {
	store *store.Store
	bl    blocklist.Blocklist
}

// NewHandler builds the default command Dispatcher.
func NewHandler(s *store.Store, bl blocklist.Blocklist) *Handler {
	return &Handler{store: s, bl: bl}
}

// Execute parses and runs one command line, returning the response line
// (without a trailing newline; ControlPlane.handle adds one).
func (h *Handler) Execute(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "ERR: empty command"
	}

	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "flush":
		return h.flush()
	case "evict":
		return h.evict()
	case "stats":
		return h.stats()
	case "add":
		return h.add(args)
	case "del":
		return h.del(args)
	case "block":
		return h.block(args)
	case "unblock":
		return h.unblock(args)
	case "blockstats":
		return h.blockstats()
	default:
		return fmt.Sprintf("ERR: unknown command %q", cmd)
	}
}

func (h *Handler) flush() string {
	h.store.FlushCache()
	return "OK: cache flushed"
}

func (h *Handler) evict() string {
	h.store.EvictExpired(h.store.Now())
	return "OK: expired entries evicted"
}

func (h *Handler) stats() string {
	return fmt.Sprintf("OK: cache_count=%d", h.store.CacheCount())
}

func (h *Handler) add(args []string) string {
	if len(args) < 3 {
		return "ERR: usage: add NAME TYPE RDATA [TTL]"
	}
	name, typeStr, rdata := args[0], args[1], args[2]
	rtype, ok := domain.ParseRRType(strings.ToUpper(typeStr))
	if !ok {
		return fmt.Sprintf("ERR: unknown record type %q", typeStr)
	}
	if _, err := rdatacodec.Encode(rtype, rdata); err != nil {
		return fmt.Sprintf("ERR: invalid rdata %q for type %s", rdata, rtype)
	}

	var ttl uint32
	if len(args) >= 4 {
		n, err := strconv.ParseUint(args[3], 10, 32)
		if err != nil {
			return fmt.Sprintf("ERR: invalid ttl %q", args[3])
		}
		ttl = uint32(n)
	}

	rr, err := domain.NewLocalRecord(name, rtype, rdata, ttl)
	if err != nil {
		return fmt.Sprintf("ERR: %s", err)
	}
	h.store.AddLocal(rr)
	return "OK: record added"
}

func (h *Handler) del(args []string) string {
	if len(args) < 2 {
		return "ERR: usage: del NAME TYPE"
	}
	rtype, ok := domain.ParseRRType(strings.ToUpper(args[1]))
	if !ok {
		return fmt.Sprintf("ERR: unknown record type %q", args[1])
	}
	h.store.DeleteLocal(args[0], rtype)
	return "OK: record deleted"
}

func (h *Handler) block(args []string) string {
	if len(args) < 1 {
		return "ERR: usage: block NAME [exact|suffix] [SOURCE]"
	}
	kindStr := ""
	if len(args) >= 2 {
		kindStr = args[1]
	}
	kind, ok := domain.ParseBlockRuleKind(kindStr)
	if !ok {
		return fmt.Sprintf("ERR: unknown block kind %q", kindStr)
	}
	source := "control-plane"
	if len(args) >= 3 {
		source = args[2]
	}
	rule, err := domain.NewBlockRule(args[0], kind, source, h.store.Now())
	if err != nil {
		return fmt.Sprintf("ERR: %s", err)
	}
	if err := h.bl.AddRule(rule); err != nil {
		return fmt.Sprintf("ERR: %s", err)
	}
	return "OK: name blocked"
}

func (h *Handler) unblock(args []string) string {
	if len(args) < 1 {
		return "ERR: usage: unblock NAME"
	}
	if _, err := h.bl.RemoveRule(args[0]); err != nil {
		return fmt.Sprintf("ERR: %s", err)
	}
	return "OK: name unblocked"
}

func (h *Handler) blockstats() string {
	s := h.bl.Stats()
	return fmt.Sprintf("OK: rules=%d cache_hits=%d cache_misses=%d cache_size=%d",
		s.RuleCount, s.CacheHits, s.CacheMisses, s.CacheSize)
}

var _ Dispatcher = (*Handler)(nil)
