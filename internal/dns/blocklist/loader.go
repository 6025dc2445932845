package blocklist

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/styxlabs/charon/internal/dns/domain"
)

// LoadDir reads every regular file directly inside dir as a one-name-per-
// line blocklist source and inserts a suffix BlockRule for each accepted
// name, returning the total number of rules added. '#'-prefixed and blank
// lines are skipped; a line that fails to parse as a valid name is skipped
// rather than aborting the whole directory. Every rule loaded this way is
// attributed to its source file and stamped with now.
func LoadDir(bl Blocklist, dir string, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		n, err := loadFile(bl, path, now)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func loadFile(bl Blocklist, path string, now time.Time) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := domain.NewBlockRule(line, domain.BlockRuleSuffix, path, now)
		if err != nil {
			continue
		}
		if err := bl.AddRule(rule); err != nil {
			continue
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, nil
}
