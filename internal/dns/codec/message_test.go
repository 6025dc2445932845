package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/styxlabs/charon/internal/dns/domain"
)

func TestEncodeDecodeQueryRoundtrip(t *testing.T) {
	q := domain.Question{ID: 42, Name: "example.com", Type: domain.RRTypeA, Class: domain.RRClassIN}
	buf := Header{ID: q.ID, RD: true, QDCount: 1}.Serialize()
	buf, err := SerializeQuestion(buf, q, map[string]int{})
	require.NoError(t, err)

	got, err := DecodeQuery(buf)
	require.NoError(t, err)
	if got != q {
		t.Errorf("roundtrip = %+v, want %+v", got, q)
	}
}

func TestEncodeResponseAndDecodeResponse(t *testing.T) {
	q := domain.Question{ID: 7, Name: "gateway.styx.local", Type: domain.RRTypeA, Class: domain.RRClassIN}
	answers := []Answer{
		{Name: "gateway.styx.local", Type: domain.RRTypeA, Class: domain.RRClassIN, TTL: 300, RData: "192.168.1.1"},
	}
	buf, err := EncodeResponse(q.ID, q, answers, domain.RCodeNoError, true)
	require.NoError(t, err)

	h, got, err := DecodeResponse(buf)
	require.NoError(t, err)
	if h.ID != q.ID || h.RCode != domain.RCodeNoError || !h.AA {
		t.Errorf("header = %+v", h)
	}
	if len(got) != 1 || got[0].RData != "192.168.1.1" {
		t.Errorf("answers = %+v", got)
	}
}

func TestEncodeResponseSetsTruncationBit(t *testing.T) {
	q := domain.Question{ID: 7, Name: "example.com", Type: domain.RRTypeTXT, Class: domain.RRClassIN}
	var answers []Answer
	for i := 0; i < 40; i++ {
		answers = append(answers, Answer{
			Name:  "example.com",
			Type:  domain.RRTypeTXT,
			Class: domain.RRClassIN,
			TTL:   300,
			RData: strings.Repeat("x", 200),
		})
	}
	buf, err := EncodeResponse(q.ID, q, answers, domain.RCodeNoError, true)
	require.NoError(t, err)
	if len(buf) > MaxUDPMessage {
		t.Fatalf("encoded message of %d octets exceeds the UDP cap", len(buf))
	}
	h, err := ParseHeader(buf)
	require.NoError(t, err)
	if !h.TC {
		t.Error("expected TC bit to be set when answers overflow the UDP cap")
	}
	if h.ANCount == 40 {
		t.Error("expected some answers to be dropped, not all retained")
	}
}

func TestEncodeResponseFitsWithoutTruncation(t *testing.T) {
	q := domain.Question{ID: 1, Name: "example.com", Type: domain.RRTypeA, Class: domain.RRClassIN}
	answers := []Answer{{Name: "example.com", Type: domain.RRTypeA, Class: domain.RRClassIN, TTL: 60, RData: "1.2.3.4"}}
	buf, err := EncodeResponse(q.ID, q, answers, domain.RCodeNoError, true)
	require.NoError(t, err)
	h, err := ParseHeader(buf)
	require.NoError(t, err)
	if h.TC {
		t.Error("TC bit should not be set for a small response")
	}
}
