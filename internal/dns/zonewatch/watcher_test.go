package zonewatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/styxlabs/charon/internal/dns/common/log"
)

func TestWatcherSignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zone.txt")
	err := os.WriteFile(path, []byte("example.com A 1.2.3.4\n"), 0o644)
	require.NoError(t, err)

	w, err := New(path, log.NewNoopLogger())
	require.NoError(t, err)
	defer w.Close()

	if w.Poll() {
		t.Fatal("no change yet, Poll should report false")
	}

	err = os.WriteFile(path, []byte("example.com A 5.6.7.8\n"), 0o644)
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.Poll() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("expected Poll to report a pending reload after the file was rewritten")
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zone.txt")
	other := filepath.Join(dir, "other.txt")
	err := os.WriteFile(path, []byte("example.com A 1.2.3.4\n"), 0o644)
	require.NoError(t, err)

	w, err := New(path, log.NewNoopLogger())
	require.NoError(t, err)
	defer w.Close()

	err = os.WriteFile(other, []byte("noise\n"), 0o644)
	require.NoError(t, err)

	time.Sleep(debounce + 100*time.Millisecond)
	if w.Poll() {
		t.Fatal("change to an unrelated file should not trigger a reload signal")
	}
}
