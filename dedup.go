// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/yawning/bloom"
)

// dedupFilter is a fast-negative pre-filter sitting in front of the
// server's exact recentClientIDs map: most incoming connection IDs have
// never been seen before, and testing the bloom
// filter first avoids a map lookup (and, more importantly, avoids
// growing the map's probe chain) on the common case. A positive from the
// filter still requires the exact map lookup, since a bloom filter never
// produces false negatives but does produce false positives.
type dedupFilter struct {
	f *bloom.Filter
}

// dedupFilterBitsLn2 and dedupFilterFalsePositiveRate size the filter
// for the expected number of distinct connection IDs live within one
// ForgetThresholdMillis sweep window (reliability.ForgetThresholdMillis):
// 2^20 bits is generous headroom for a few thousand live connection IDs
// at a 1% false positive rate.
const (
	dedupFilterBitsLn2           = 20
	dedupFilterFalsePositiveRate = 0.01
)

func newDedupFilter() *dedupFilter {
	f, err := bloom.New(rand.Reader, dedupFilterBitsLn2, dedupFilterFalsePositiveRate)
	if err != nil {
		// Only a bad mLn2/p combination or a failing rand source can make
		// New return an error; neither happens with fixed, valid constants
		// and crypto/rand.
		panic(err)
	}
	return &dedupFilter{f: f}
}

func (d *dedupFilter) add(cid uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], cid)
	d.f.Set(buf[:])
}

// maybeSeen reports whether cid might already be a known connection ID.
// false means definitely not seen; true means the exact map must be
// consulted.
func (d *dedupFilter) maybeSeen(cid uint64) bool {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], cid)
	return d.f.Test(buf[:])
}
