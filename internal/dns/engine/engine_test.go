package engine

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/styxlabs/charon/internal/dns/blocklist"
	"github.com/styxlabs/charon/internal/dns/codec"
	"github.com/styxlabs/charon/internal/dns/common/clock"
	"github.com/styxlabs/charon/internal/dns/common/log"
	"github.com/styxlabs/charon/internal/dns/domain"
	"github.com/styxlabs/charon/internal/dns/forwarder"
	"github.com/styxlabs/charon/internal/dns/store"
)

// startFakeUpstream runs a minimal UDP DNS server that answers every query
// with one A record (203.0.113.9) for the queried name, so Forward tests
// exercise a real socket without reaching the network.
func startFakeUpstream(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, 512)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			q, err := codec.DecodeQuery(buf[:n])
			if err != nil {
				continue
			}
			resp, err := codec.EncodeResponse(q.ID, q, []codec.Answer{
				{Name: q.Name, Type: domain.RRTypeA, Class: domain.RRClassIN, TTL: 60, RData: "203.0.113.9"},
			}, domain.RCodeNoError, false)
			if err != nil {
				continue
			}
			_, _ = conn.WriteToUDP(resp, addr)
		}
	}()

	return conn.LocalAddr().String()
}

func newTestEngine(t *testing.T, upstream string) (*Engine, *store.Store) {
	t.Helper()
	mc := &clock.MockClock{CurrentTime: time.Unix(0, 0)}
	s, err := store.New(mc, 0)
	require.NoError(t, err)

	bl, err := blocklist.Open(blocklist.Options{DBPath: t.TempDir() + "/bl.db"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bl.Close() })

	fwd := forwarder.New(upstream, upstream, 2*time.Second)

	e, err := New(Options{
		UDPAddr:       "127.0.0.1:0",
		ControlSocket: t.TempDir() + "/charon.sock",
		Store:         s,
		Codec:         codec.NewUDPCodec(log.NewNoopLogger()),
		Forwarder:     fwd,
		Blocklist:     bl,
		Logger:        log.NewNoopLogger(),
		PollInterval:  20 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, s
}

func sendQuery(t *testing.T, addr net.Addr, name string, qtype domain.RRType) []byte {
	t.Helper()
	conn, err := net.Dial("udp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	q, err := domain.NewQuestion(42, name, qtype, domain.RRClassIN)
	require.NoError(t, err)
	query, err := codec.NewUDPCodec(log.NewNoopLogger()).EncodeQuery(q)
	require.NoError(t, err)

	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Write(query)
	require.NoError(t, err)

	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return buf[:n]
}

func TestEngineAnswersFromLocalStore(t *testing.T) {
	upstream := startFakeUpstream(t)
	e, s := newTestEngine(t, upstream)

	rr, _ := domain.NewLocalRecord("gateway.example.com", domain.RRTypeA, "10.0.0.1", 300)
	s.AddLocal(rr)

	stop := make(chan struct{})
	go func() { _ = e.Run(stop) }()
	defer close(stop)

	resp := sendQuery(t, e.conn.LocalAddr(), "gateway.example.com", domain.RRTypeA)
	h, answers, err := codec.DecodeResponse(resp)
	require.NoError(t, err)
	if !h.AA {
		t.Error("expected AA=1 for a locally served answer")
	}
	if len(answers) != 1 || answers[0].RData != "10.0.0.1" {
		t.Fatalf("unexpected answers: %+v", answers)
	}
}

func TestEngineForwardsAndCachesOnMiss(t *testing.T) {
	upstream := startFakeUpstream(t)
	e, s := newTestEngine(t, upstream)

	stop := make(chan struct{})
	go func() { _ = e.Run(stop) }()
	defer close(stop)

	resp := sendQuery(t, e.conn.LocalAddr(), "upstream.example.com", domain.RRTypeA)
	h, answers, err := codec.DecodeResponse(resp)
	require.NoError(t, err)
	if h.AA {
		t.Error("forwarded answer must not carry AA=1")
	}
	if len(answers) != 1 || answers[0].RData != "203.0.113.9" {
		t.Fatalf("unexpected answers: %+v", answers)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s.CacheCount() > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected the forwarded answer to be cached")
}

func TestEngineBlocksNameBeforeLocalLookup(t *testing.T) {
	upstream := startFakeUpstream(t)
	e, s := newTestEngine(t, upstream)

	rr, _ := domain.NewLocalRecord("ads.example.com", domain.RRTypeA, "10.0.0.2", 300)
	s.AddLocal(rr)
	rule, _ := domain.NewBlockRule("ads.example.com", domain.BlockRuleExact, "test", time.Now())
	err := e.blocklist.AddRule(rule)
	require.NoError(t, err)

	stop := make(chan struct{})
	go func() { _ = e.Run(stop) }()
	defer close(stop)

	resp := sendQuery(t, e.conn.LocalAddr(), "ads.example.com", domain.RRTypeA)
	h, answers, err := codec.DecodeResponse(resp)
	require.NoError(t, err)
	if h.RCode != domain.RCodeNXDomain {
		t.Errorf("RCode = %v, want NXDOMAIN", h.RCode)
	}
	if len(answers) != 0 {
		t.Errorf("expected no answers for a blocked name, got %+v", answers)
	}
}
