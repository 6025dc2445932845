package controlplane

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/styxlabs/charon/internal/dns/blocklist"
	"github.com/styxlabs/charon/internal/dns/common/clock"
	"github.com/styxlabs/charon/internal/dns/domain"
	"github.com/styxlabs/charon/internal/dns/store"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	s, err := store.New(&clock.MockClock{CurrentTime: time.Unix(0, 0)}, 0)
	require.NoError(t, err)
	return NewHandler(s, blocklist.Noop{})
}

func TestExecuteUnknownCommand(t *testing.T) {
	h := newTestHandler(t)
	resp := h.Execute("bogus")
	if !strings.HasPrefix(resp, "ERR:") {
		t.Errorf("expected ERR response, got %q", resp)
	}
}

func TestExecuteAddAndDel(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Execute("add www.example.com A 1.2.3.4 300")
	if !strings.HasPrefix(resp, "OK:") {
		t.Fatalf("add failed: %q", resp)
	}
	if recs := h.store.LookupLocal("www.example.com", domain.RRTypeA); len(recs) != 1 {
		t.Fatalf("expected 1 local record, got %d", len(recs))
	}

	resp = h.Execute("del www.example.com A")
	if !strings.HasPrefix(resp, "OK:") {
		t.Fatalf("del failed: %q", resp)
	}
	if recs := h.store.LookupLocal("www.example.com", domain.RRTypeA); len(recs) != 0 {
		t.Fatalf("expected record removed, got %d", len(recs))
	}
}

func TestExecuteAddRejectsBadType(t *testing.T) {
	h := newTestHandler(t)
	resp := h.Execute("add www.example.com BOGUS 1.2.3.4")
	if !strings.HasPrefix(resp, "ERR:") {
		t.Errorf("expected ERR response, got %q", resp)
	}
}

func TestExecuteFlushAndEvictAndStats(t *testing.T) {
	h := newTestHandler(t)
	h.store.CacheRecord(mustCacheEntry(t, h))

	if resp := h.Execute("stats"); !strings.Contains(resp, "cache_count=1") {
		t.Errorf("expected cache_count=1, got %q", resp)
	}
	if resp := h.Execute("flush"); !strings.HasPrefix(resp, "OK:") {
		t.Errorf("flush failed: %q", resp)
	}
	if resp := h.Execute("stats"); !strings.Contains(resp, "cache_count=0") {
		t.Errorf("expected cache_count=0 after flush, got %q", resp)
	}
	if resp := h.Execute("evict"); !strings.HasPrefix(resp, "OK:") {
		t.Errorf("evict failed: %q", resp)
	}
}

func mustCacheEntry(t *testing.T, h *Handler) domain.CacheEntry {
	t.Helper()
	return domain.NewCacheEntry("example.com", domain.RRTypeA, "1.2.3.4", 60, h.store.Now())
}

func TestExecuteBlockUnblockAndStats(t *testing.T) {
	s, err := store.New(&clock.MockClock{CurrentTime: time.Unix(0, 0)}, 0)
	require.NoError(t, err)
	bl, err := blocklist.Open(blocklist.Options{DBPath: t.TempDir() + "/bl.db"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bl.Close() })
	h := NewHandler(s, bl)

	if resp := h.Execute("block ads.example.com suffix"); !strings.HasPrefix(resp, "OK:") {
		t.Fatalf("block failed: %q", resp)
	}
	if !bl.Decide("tracker.ads.example.com").IsBlocked() {
		t.Error("expected subdomain to be blocked after suffix block")
	}

	if resp := h.Execute("blockstats"); !strings.Contains(resp, "rules=1") {
		t.Errorf("expected rules=1, got %q", resp)
	}

	if resp := h.Execute("unblock ads.example.com"); !strings.HasPrefix(resp, "OK:") {
		t.Fatalf("unblock failed: %q", resp)
	}
	if bl.Decide("tracker.ads.example.com").IsBlocked() {
		t.Error("expected subdomain to be unblocked after unblock")
	}
}
