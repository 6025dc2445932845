package blocklist

import (
	"encoding/binary"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/styxlabs/charon/internal/dns/domain"
)

var bucketRules = []byte("rules")

// boltStore is the persistent rule index: canonical name -> encoded rule
// (kind, source, added_at). It outlives process restarts, unlike the
// Store's in-memory relations.
type boltStore struct {
	db *bbolt.DB
}

// openBoltStore opens (creating if absent) a bbolt database at path.
func openBoltStore(path string) (*boltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRules)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error {
	return s.db.Close()
}

// Put writes rule r, overwriting any existing rule at the same name.
func (s *boltStore) Put(r domain.BlockRule) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRules).Put([]byte(r.Name), encodeRule(r))
	})
}

// encodeRule packs a BlockRule's kind, ingestion time, and source into a
// single value: 1 byte kind, 8 bytes big-endian Unix seconds, then the
// raw source string.
func encodeRule(r domain.BlockRule) []byte {
	buf := make([]byte, 9+len(r.Source))
	buf[0] = byte(r.Kind)
	binary.BigEndian.PutUint64(buf[1:9], uint64(r.AddedAt.Unix()))
	copy(buf[9:], r.Source)
	return buf
}

// decodeRule reverses encodeRule, filling in name from the bucket key.
func decodeRule(name string, v []byte) (domain.BlockRule, bool) {
	if len(v) < 9 {
		return domain.BlockRule{}, false
	}
	return domain.BlockRule{
		Name:    name,
		Kind:    domain.BlockRuleKind(v[0]),
		AddedAt: time.Unix(int64(binary.BigEndian.Uint64(v[1:9])), 0),
		Source:  string(v[9:]),
	}, true
}

// Delete removes the rule at name, reporting whether one existed.
func (s *boltStore) Delete(name string) (bool, error) {
	existed := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRules)
		existed = b.Get([]byte(name)) != nil
		if existed {
			return b.Delete([]byte(name))
		}
		return nil
	})
	return existed, err
}

// MatchExact reports whether name has an exact-kind rule, returning the
// matched rule's full detail (kind, source, ingestion time) on a hit. The
// bucket key narrows the lookup to the one candidate rule stored under
// name; domain.BlockRule.Matches, not a kind comparison done here, decides
// whether that candidate actually blocks name.
func (s *boltStore) MatchExact(name string) (domain.BlockRule, bool, error) {
	var rule domain.BlockRule
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketRules).Get([]byte(name))
		if v == nil {
			return nil
		}
		r, decoded := decodeRule(name, v)
		if decoded && r.Kind == domain.BlockRuleExact && r.Matches(name) {
			rule, ok = r, true
		}
		return nil
	})
	return rule, ok, err
}

// MatchSuffix walks name and each of its parent domains looking for a
// suffix-kind rule. ancestorsOf only narrows which bucket keys are worth
// fetching — bbolt has no suffix index, so this bounds the lookup to one
// key per label instead of scanning every stored rule. Whether a fetched
// candidate actually blocks name is decided by domain.BlockRule.Matches,
// the same predicate BlockRule uses everywhere else, not by re-deriving
// the suffix relationship here.
func (s *boltStore) MatchSuffix(name string) (domain.BlockRule, bool, error) {
	var rule domain.BlockRule
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRules)
		for _, ancestor := range ancestorsOf(name) {
			v := b.Get([]byte(ancestor))
			if v == nil {
				continue
			}
			r, decoded := decodeRule(ancestor, v)
			if decoded && r.Kind == domain.BlockRuleSuffix && r.Matches(name) {
				rule, found = r, true
				return nil
			}
		}
		return nil
	})
	return rule, found, err
}

// Count returns the number of rules in the store.
func (s *boltStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketRules).Stats().KeyN
		return nil
	})
	return n, err
}

// All returns every rule in the store, for bloom filter rebuilds.
func (s *boltStore) All() ([]domain.BlockRule, error) {
	var rules []domain.BlockRule
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRules).ForEach(func(k, v []byte) error {
			r, ok := decodeRule(string(k), v)
			if !ok {
				return nil
			}
			rules = append(rules, r)
			return nil
		})
	})
	return rules, err
}

// ancestorsOf returns name and each of its parent domains, most specific
// first, down to and including the apex label.
func ancestorsOf(name string) []string {
	var out []string
	for {
		out = append(out, name)
		i := strings.IndexByte(name, '.')
		if i < 0 {
			return out
		}
		name = name[i+1:]
	}
}
