package blocklist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDirAddsSuffixRulesSkippingComments(t *testing.T) {
	dir := t.TempDir()
	contents := "# ad networks\nads.example.com\n\ntracker.example.net\n"
	err := os.WriteFile(filepath.Join(dir, "list.txt"), []byte(contents), 0o644)
	require.NoError(t, err)

	bl := newTestRepo(t)
	n, err := LoadDir(bl, dir, time.Now())
	require.NoError(t, err)
	if n != 2 {
		t.Fatalf("expected 2 rules loaded, got %d", n)
	}

	if !bl.Decide("ads.example.com").IsBlocked() {
		t.Error("expected ads.example.com to be blocked")
	}
	if !bl.Decide("sub.tracker.example.net").IsBlocked() {
		t.Error("expected a subdomain of a suffix rule to be blocked")
	}
}
