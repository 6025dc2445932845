package domain

import (
	"fmt"

	"github.com/styxlabs/charon/internal/dns/common/names"
)

// Question is a parsed DNS query question section, carrying the header ID
// alongside it so the engine can thread it through the lookup pipeline
// without a second struct.
type Question struct {
	ID    uint16
	Name  string // presentation form as given or decoded; CacheKey canonicalizes it
	Type  RRType
	Class RRClass
}

// NewQuestion constructs and validates a Question.
func NewQuestion(id uint16, name string, qtype RRType, class RRClass) (Question, error) {
	q := Question{ID: id, Name: name, Type: qtype, Class: class}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate reports whether q is structurally sound. It does not require
// Type to be synthesizable: a question for an unrecognized type is still a
// valid question (it will simply never match local data).
func (q Question) Validate() error {
	if !q.Class.IsValid() {
		return fmt.Errorf("unsupported RRClass: %d", q.Class)
	}
	return nil
}

// CacheKey returns the lookup key shared by the Store's local and cache
// relations for this question.
func (q Question) CacheKey() string {
	return cacheKey(q.Name, q.Type)
}

// cacheKey builds the (normalized name, type) key used across the Store.
// Class is deliberately excluded: Charon only ever serves RRClassIN, so
// including it would add a dimension with exactly one value.
func cacheKey(name string, t RRType) string {
	return names.Canonical(name) + "|" + t.String()
}
