// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package utf8range lowers Unicode codepoint intervals to parsing
// expressions over UTF-8 byte ranges. The compiled expression matches
// exactly the UTF-8 encodings of the codepoints in the interval.
//
// Interval endpoints are trusted: a surrogate endpoint (D800..DFFF) is
// encoded and matched like any other codepoint. Full-length middles follow
// the well-formed UTF-8 byte tables, so overlong forms and surrogate
// encodings never leak in from an interval that merely spans them.
package utf8range

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rpl-lang/rpl/peg"
)

// MaxCodepoint is the largest encodable codepoint.
const MaxCodepoint = 0x10FFFF

// Boundary encodings of the shortest and longest codepoint per byte length.
var (
	starts = [5][]byte{
		1: {0x00},
		2: {0xC2, 0x80},
		3: {0xE0, 0xA0, 0x80},
		4: {0xF0, 0x90, 0x80, 0x80},
	}
	ends = [5][]byte{
		1: {0x7F},
		2: {0xDF, 0xBF},
		3: {0xEF, 0xBF, 0xBF},
		4: {0xF4, 0x8F, 0xBF, 0xBF},
	}
)

type cacheKey struct {
	lo, hi rune
}

var cache *lru.Cache[cacheKey, peg.Pattern]

func init() {
	// Lowering is pure and patterns are immutable, so compiled intervals
	// are shared between callers.
	cache, _ = lru.New[cacheKey, peg.Pattern](512)
}

// Compile returns a pattern matching exactly the UTF-8 byte sequences of
// the codepoints in [lo,hi]. lo > hi or an endpoint outside
// [0,0x10FFFF] is an invariant violation of the caller.
func Compile(lo, hi rune) (peg.Pattern, error) {
	if lo < 0 || hi > MaxCodepoint || lo > hi {
		return nil, fmt.Errorf("invalid codepoint range [%X,%X]", lo, hi)
	}
	if p, ok := cache.Get(cacheKey{lo, hi}); ok {
		return p, nil
	}
	p := emit(expand(synthesize(encode(lo), encode(hi))))
	cache.Add(cacheKey{lo, hi}, p)
	return p, nil
}

// encode is UTF-8 encoding without the surrogate and error-rune rewriting
// the standard library applies.
func encode(c rune) []byte {
	switch {
	case c < 0x80:
		return []byte{byte(c)}
	case c < 0x800:
		return []byte{0xC0 | byte(c>>6), 0x80 | byte(c&0x3F)}
	case c < 0x10000:
		return []byte{0xE0 | byte(c>>12), 0x80 | byte(c>>6&0x3F), 0x80 | byte(c&0x3F)}
	default:
		return []byte{0xF0 | byte(c>>18), 0x80 | byte(c>>12&0x3F), 0x80 | byte(c>>6&0x3F), 0x80 | byte(c&0x3F)}
	}
}

// The intermediate tree: byte ranges, concatenation, ordered choice, and
// deferred full-range nodes expanded in a second pass.
type node interface {
	irNode()
}

type rng struct {
	lo, hi byte
}

type cat struct {
	a, b node
}

type alt struct {
	alts []node
}

// full stands for "every byte sequence of the given length whose byte at
// index has a value in [lo,hi], all later bytes unconstrained
// continuations". Expansion applies the restricted first-byte rows.
type full struct {
	length, index int
	lo, hi        byte
}

func (rng) irNode()  {}
func (cat) irNode()  {}
func (alt) irNode()  {}
func (full) irNode() {}

// synthesize builds the tree for [s,e], where s and e are the encoded
// endpoints.
func synthesize(s, e []byte) node {
	if len(s) == len(e) {
		return same(s, e, 0)
	}

	var parts []node
	if bytes.Equal(s, starts[len(s)]) {
		parts = append(parts, wholeLength(len(s)))
	} else {
		parts = append(parts, same(s, ends[len(s)], 0))
	}
	for k := len(s) + 1; k < len(e); k++ {
		parts = append(parts, wholeLength(k))
	}
	if bytes.Equal(e, ends[len(e)]) {
		parts = append(parts, wholeLength(len(e)))
	} else {
		parts = append(parts, same(starts[len(e)], e, 0))
	}
	return alt{alts: parts}
}

// wholeLength covers every k-byte sequence.
func wholeLength(k int) node {
	return full{length: k, index: 0, lo: starts[k][0], hi: ends[k][0]}
}

// same decomposes [s,e] for equal-length endpoints, working left to right
// from byte index i. Differing bytes split into a low fringe, a full
// middle, and a high fringe; a fringe that happens to span its whole
// subrange merges into the middle.
func same(s, e []byte, i int) node {
	k := len(s)
	if i == k-1 {
		return rng{lo: s[i], hi: e[i]}
	}
	if s[i] == e[i] {
		return cat{a: rng{lo: s[i], hi: s[i]}, b: same(s, e, i+1)}
	}

	lowFull := bytes.Equal(s[i+1:], minTail(s[i], i, k))
	highFull := bytes.Equal(e[i+1:], maxTail(e[i], i, k))

	var parts []node
	midLo, midHi := s[i], e[i]

	if !lowFull {
		eLow := append(append([]byte{}, s[:i+1]...), maxTail(s[i], i, k)...)
		if bytes.Compare(eLow, s) < 0 {
			// A surrogate endpoint lies above the restricted ED row; its
			// fringe runs to the end of the unrestricted row instead.
			eLow = append(append([]byte{}, s[:i+1]...), bytes.Repeat([]byte{0xBF}, k-i-1)...)
		}
		parts = append(parts, cat{a: rng{lo: s[i], hi: s[i]}, b: same(s, eLow, i+1)})
		midLo = s[i] + 1
	}

	var high node
	if !highFull {
		sHigh := append(append([]byte{}, e[:i+1]...), minTail(e[i], i, k)...)
		high = cat{a: rng{lo: e[i], hi: e[i]}, b: same(sHigh, e, i+1)}
		midHi = e[i] - 1
	}

	if midLo <= midHi {
		parts = append(parts, full{length: k, index: i, lo: midLo, hi: midHi})
	}
	if high != nil {
		parts = append(parts, high)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return alt{alts: parts}
}

// minTail is the smallest continuation tail for a sequence whose byte at
// index i is b; maxTail is the largest. At the first byte the restricted
// rows for E0, F0 (minimum) and ED, F4 (maximum) apply.
func minTail(b byte, i, k int) []byte {
	tail := bytes.Repeat([]byte{0x80}, k-i-1)
	if i == 0 {
		switch b {
		case 0xE0:
			tail[0] = 0xA0
		case 0xF0:
			tail[0] = 0x90
		}
	}
	return tail
}

func maxTail(b byte, i, k int) []byte {
	tail := bytes.Repeat([]byte{0xBF}, k-i-1)
	if i == 0 {
		switch b {
		case 0xED:
			tail[0] = 0x9F
		case 0xF4:
			tail[0] = 0x8F
		}
	}
	return tail
}

// restricted second-byte rows, keyed by sequence length and first byte.
type row struct {
	first  [2]byte
	second [2]byte
}

// expand replaces full nodes with explicit byte-range rows.
func expand(n node) node {
	switch n := n.(type) {
	case cat:
		return cat{a: expand(n.a), b: expand(n.b)}
	case alt:
		alts := make([]node, len(n.alts))
		for i, a := range n.alts {
			alts[i] = expand(a)
		}
		return alt{alts: alts}
	case full:
		return expandFull(n)
	default:
		return n
	}
}

func expandFull(f full) node {
	conts := f.length - f.index - 1
	if f.index > 0 || f.length < 3 {
		// No restricted rows apply: either we are past the first byte
		// (the first byte fixed upstream already constrained the second)
		// or the length has a uniform continuation row.
		return withConts(rng{lo: f.lo, hi: f.hi}, conts)
	}

	rows := splitRows(f.length, f.lo, f.hi)
	parts := make([]node, len(rows))
	for i, r := range rows {
		parts[i] = cat{
			a: rng{lo: r.first[0], hi: r.first[1]},
			b: withConts(rng{lo: r.second[0], hi: r.second[1]}, conts-1),
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return alt{alts: parts}
}

// withConts appends n unconstrained continuation bytes to head.
func withConts(head node, n int) node {
	out := head
	for ; n > 0; n-- {
		out = cat{a: out, b: rng{lo: 0x80, hi: 0xBF}}
	}
	return out
}

// splitRows slices the first-byte span [lo,hi] into well-formed rows for
// 3- and 4-byte sequences: E0 and F0 narrow the second byte from below, ED
// and F4 from above.
func splitRows(k int, lo, hi byte) []row {
	special := map[byte][2]byte{}
	switch k {
	case 3:
		special[0xE0] = [2]byte{0xA0, 0xBF}
		special[0xED] = [2]byte{0x80, 0x9F}
	case 4:
		special[0xF0] = [2]byte{0x90, 0xBF}
		special[0xF4] = [2]byte{0x80, 0x8F}
	}

	var rows []row
	plainStart := -1
	flush := func(end byte) {
		if plainStart >= 0 {
			rows = append(rows, row{
				first:  [2]byte{byte(plainStart), end},
				second: [2]byte{0x80, 0xBF},
			})
			plainStart = -1
		}
	}
	for b := int(lo); b <= int(hi); b++ {
		if sec, ok := special[byte(b)]; ok {
			flush(byte(b - 1))
			rows = append(rows, row{first: [2]byte{byte(b), byte(b)}, second: sec})
			continue
		}
		if plainStart < 0 {
			plainStart = b
		}
	}
	flush(hi)
	return rows
}

// emit compiles the expanded tree to pattern primitives.
func emit(n node) peg.Pattern {
	switch n := n.(type) {
	case rng:
		return peg.ByteRange(n.lo, n.hi)
	case cat:
		return peg.Seq(emit(n.a), emit(n.b))
	case alt:
		alts := make([]peg.Pattern, len(n.alts))
		for i, a := range n.alts {
			alts[i] = emit(a)
		}
		return peg.Choice(alts...)
	case full:
		// Expanded before emission; unreachable.
		return emit(expandFull(n))
	}
	return nil
}
