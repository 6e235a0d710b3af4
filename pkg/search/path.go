package search

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
)

// PathAddress is the route from the root to a node: one child index per
// depth level. Paths in which every index is 0 or 1 are stored as a
// bitset (1 meaning the right child), all others as a list of
// ordinals. The representation is chosen when the value is built and
// never changes.
type PathAddress struct {
	length   int
	bits     *bitset.BitSet
	ordinals []int
}

// NewPath returns the path following the given child indices from the
// root.
func NewPath(indices ...int) PathAddress {
	p := rootPath()
	for _, i := range indices {
		p = p.child(i, p.Binary() && i < 2)
	}
	return p
}

func rootPath() PathAddress {
	return PathAddress{bits: bitset.New(0)}
}

// child extends p by one level. binary must only be true when p is
// binary and i < 2.
func (p PathAddress) child(i int, binary bool) PathAddress {
	if i < 0 {
		violation("path", stateUnknown, "negative child index %d", i)
	}
	if binary {
		bits := p.bits.Clone()
		if i == 1 {
			bits.Set(uint(p.length))
		}
		return PathAddress{length: p.length + 1, bits: bits}
	}
	ordinals := make([]int, p.length, p.length+1)
	for d := 0; d < p.length; d++ {
		ordinals[d] = p.At(d)
	}
	return PathAddress{length: p.length + 1, ordinals: append(ordinals, i)}
}

// Len returns the number of levels in the path, which is the depth of
// the node it leads to.
func (p PathAddress) Len() int {
	return p.length
}

// Binary reports whether the path is stored as a bitset.
func (p PathAddress) Binary() bool {
	return p.ordinals == nil
}

// At returns the child index taken at depth level d (0 is the step
// from the root to its child).
func (p PathAddress) At(d int) int {
	if d < 0 || d >= p.length {
		violation("path", stateUnknown, "level %d out of range [0, %d)", d, p.length)
	}
	if p.Binary() {
		if p.bits.Test(uint(d)) {
			return 1
		}
		return 0
	}
	return p.ordinals[d]
}

// Indices returns the child indices as a list.
func (p PathAddress) Indices() []int {
	indices := make([]int, p.length)
	for d := range indices {
		indices[d] = p.At(d)
	}
	return indices
}

// Prefix returns the first n levels of p.
func (p PathAddress) Prefix(n int) PathAddress {
	if n < 0 || n > p.length {
		violation("path", stateUnknown, "prefix %d out of range [0, %d]", n, p.length)
	}
	if p.Binary() {
		bits := bitset.New(uint(n))
		for d := 0; d < n; d++ {
			if p.bits.Test(uint(d)) {
				bits.Set(uint(d))
			}
		}
		return PathAddress{length: n, bits: bits}
	}
	return NewPath(p.ordinals[:n]...)
}

// CommonPrefix returns the depth of the deepest common ancestor of the
// nodes addressed by p and o. When both are binary the first differing
// level is found with one XOR and a scan for the next set bit.
func (p PathAddress) CommonPrefix(o PathAddress) int {
	n := min(p.length, o.length)
	if n == 0 {
		return 0
	}
	if p.Binary() && o.Binary() {
		if first, ok := p.bits.SymmetricDifference(o.bits).NextSet(0); ok && int(first) < n {
			return int(first)
		}
		return n
	}
	for d := 0; d < n; d++ {
		if p.At(d) != o.At(d) {
			return d
		}
	}
	return n
}

// Equal reports whether p and o lead to the same coordinate.
func (p PathAddress) Equal(o PathAddress) bool {
	return p.length == o.length && p.CommonPrefix(o) == p.length
}

// Key returns a string usable as a map key; equal paths have equal
// keys.
func (p PathAddress) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(p.length))
	if p.Binary() {
		b.WriteByte('b')
		var word [8]byte
		for w := 0; w*64 < p.length; w++ {
			var v uint64
			if words := p.bits.Bytes(); w < len(words) {
				v = words[w]
			}
			binary.LittleEndian.PutUint64(word[:], v)
			b.Write(word[:])
		}
		return b.String()
	}
	b.WriteByte('o')
	for _, i := range p.ordinals {
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('.')
	}
	return b.String()
}

// Hash returns a hash of the path consistent with Equal.
func (p PathAddress) Hash() uint64 {
	return xxhash.Sum64String(p.Key())
}

func (p PathAddress) String() string {
	s := make([]string, p.length)
	for d := range s {
		s[d] = strconv.Itoa(p.At(d))
	}
	return "[" + strings.Join(s, " ") + "]"
}
