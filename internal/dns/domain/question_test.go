package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewQuestionValidatesClass(t *testing.T) {
	_, err := NewQuestion(1, "example.com", RRTypeA, RRClassIN)
	require.NoError(t, err)
	_, err = NewQuestion(1, "example.com", RRTypeA, RRClass(99))
	require.Error(t, err, "expected error for invalid class")
}

func TestQuestionCacheKeyMatchesRecord(t *testing.T) {
	q, err := NewQuestion(1, "Gateway.Styx.Local.", RRTypeA, RRClassIN)
	require.NoError(t, err)
	rr, err := NewLocalRecord("gateway.styx.local", RRTypeA, "192.168.1.1", 300)
	require.NoError(t, err)
	if q.CacheKey() != rr.CacheKey() {
		t.Errorf("question key %q != record key %q", q.CacheKey(), rr.CacheKey())
	}
}
