package blocklist

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"
)

// bloomFilter is a probabilistic early-allow check: if a name and none of
// its ancestors are present in the filter, the name is definitely not
// blocked and the persistent store is never consulted. A positive test is
// not proof of a block; the store is always the final authority.
type bloomFilter struct {
	bf *bitsbloom.BloomFilter
}

// newBloomFilter sizes a filter for n expected rules at the given target
// false-positive rate.
func newBloomFilter(n uint, fpRate float64) *bloomFilter {
	if n == 0 {
		n = 1
	}
	return &bloomFilter{bf: bitsbloom.NewWithEstimates(n, fpRate)}
}

func (f *bloomFilter) Add(name string) {
	f.bf.Add([]byte(name))
}

func (f *bloomFilter) MightContain(name string) bool {
	return f.bf.Test([]byte(name))
}

// MightContainAny reports whether name or any of its ancestors might be
// present, which is the shape of test the suffix-matching Decide pipeline
// needs.
func (f *bloomFilter) MightContainAny(candidates []string) bool {
	for _, c := range candidates {
		if f.MightContain(c) {
			return true
		}
	}
	return false
}
