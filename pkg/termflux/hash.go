package termflux

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Structural hashing. Every term has a 64-bit structural hash derived
// from its tag and payload; child references contribute their own
// hashes, so the hash of a graph node is stable under sharing. Hashes
// are memoized per handle — terms are immutable, so a computed hash
// never goes stale. The reserved value 0 marks "not yet computed";
// computed hashes are biased away from 0.
//
// Two deliberate deviations from plain structural hashing, both part
// of the documented semantics:
//
//   - Tree hashes only its length and depth, so dependency sets built
//     in different union orders still compare cheaply.
//   - Hashmap folds its entry hashes order-insensitively (sorted before
//     the final digest), so equal maps with different insertion
//     histories hash equal. Hashmap equality itself is the documented
//     probabilistic same-size-and-hash check.

// HashOf returns the structural hash of a term. HashOf(NIL) is 0.
func (a *Arena) HashOf(h Handle) uint64 {
	if h == NIL || int(h) >= len(a.terms) {
		return 0
	}
	if cached := a.hashes[h]; cached != 0 {
		return cached
	}
	d := xxhash.New()
	a.terms[h].writeHash(a, d)
	sum := d.Sum64()
	if sum == 0 {
		sum = 1
	}
	a.hashes[h] = sum
	return sum
}

// Equal reports structural equality of two terms. Equal terms always
// hash equal; the converse is probabilistic for Hashmap (documented)
// and collision-bounded elsewhere. NIL equals only NIL.
func (a *Arena) Equal(x, y Handle) bool {
	if x == y {
		return true
	}
	tx, ty := a.term(x), a.term(y)
	if tx == nil || ty == nil {
		return false
	}
	if tx.Kind() != ty.Kind() {
		return false
	}
	return tx.equal(a, ty)
}

func hashTag(d *xxhash.Digest, k Kind) {
	_, _ = d.Write([]byte{byte(k)})
}

func hashU64(d *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = d.Write(buf[:])
}

func hashI64(d *xxhash.Digest, v int64) {
	hashU64(d, uint64(v))
}

func hashU32(d *xxhash.Digest, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = d.Write(buf[:])
}

func hashBool(d *xxhash.Digest, v bool) {
	if v {
		_, _ = d.Write([]byte{1})
	} else {
		_, _ = d.Write([]byte{0})
	}
}

// hashFloat normalizes NaN to a single canonical bit pattern so that
// all NaNs hash (and compare) equal, matching Float equality.
func hashFloat(d *xxhash.Digest, v float64) {
	bits := math.Float64bits(v)
	if math.IsNaN(v) {
		bits = math.Float64bits(math.NaN())
	}
	hashU64(d, bits)
}

// hashChild folds a child reference into the digest via its memoized
// structural hash. NIL children contribute the reserved 0.
func hashChild(a *Arena, d *xxhash.Digest, child Handle) {
	hashU64(d, a.HashOf(child))
}

// hashTermDirect computes a term's structural hash without going
// through the per-handle memo. Used where only the record is at hand.
func hashTermDirect(a *Arena, t Term) uint64 {
	d := xxhash.New()
	t.writeHash(a, d)
	sum := d.Sum64()
	if sum == 0 {
		sum = 1
	}
	return sum
}

// combineHashes folds two 64-bit hashes into one. Used for hashmap
// entry digests and the state-value hash chain.
func combineHashes(x, y uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], x)
	binary.LittleEndian.PutUint64(buf[8:], y)
	return xxhash.Sum64(buf[:])
}
