// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package peg

import "bytes"

// Match is one node of the capture tree produced by a successful match.
// Start and End are byte offsets into the input; End is exclusive. Data is
// set instead of a span for constant captures.
type Match struct {
	Type  string   `json:"type"`
	Start int      `json:"s"`
	End   int      `json:"e"`
	Data  string   `json:"data,omitempty"`
	Subs  []*Match `json:"subs,omitempty"`
}

// Result holds the outcome of a successful match: the number of input bytes
// consumed and the captures produced, in completion order.
type Result struct {
	End      int
	Captures []*Match
}

// MatchBytes matches p against input anchored at offset 0. A match need not
// consume the whole input; callers wanting an exact match compare End with
// len(input). Returns nil if p does not match.
func MatchBytes(p Pattern, input []byte) *Result {
	m := &matchState{input: input}
	var caps []*Match
	end, ok := m.match(p, 0, &caps)
	if !ok {
		return nil
	}
	return &Result{End: end, Captures: caps}
}

// MatchString is MatchBytes over a string.
func MatchString(p Pattern, input string) *Result {
	return MatchBytes(p, []byte(input))
}

type matchState struct {
	input []byte
}

// match attempts p at pos. Captures produced by successful sub-matches are
// appended to *caps; every backtrack point truncates caps back to its mark.
func (m *matchState) match(p Pattern, pos int, caps *[]*Match) (int, bool) {
	switch p := p.(type) {
	case *literal:
		if bytes.HasPrefix(m.input[pos:], p.bytes) {
			return pos + len(p.bytes), true
		}
		return 0, false

	case *byteRange:
		if pos < len(m.input) && p.lo <= m.input[pos] && m.input[pos] <= p.hi {
			return pos + 1, true
		}
		return 0, false

	case *sequence:
		mid, ok := m.match(p.a, pos, caps)
		if !ok {
			return 0, false
		}
		return m.match(p.b, mid, caps)

	case *choice:
		mark := len(*caps)
		for _, alt := range p.alts {
			if end, ok := m.match(alt, pos, caps); ok {
				return end, true
			}
			*caps = (*caps)[:mark]
		}
		return 0, false

	case *lookAhead:
		var scratch []*Match
		if _, ok := m.match(p.body, pos, &scratch); ok {
			return pos, true
		}
		return 0, false

	case *lookBehind:
		if pos < p.n {
			return 0, false
		}
		var scratch []*Match
		if end, ok := m.match(p.body, pos-p.n, &scratch); ok && end == pos {
			return pos, true
		}
		return 0, false

	case *negation:
		var scratch []*Match
		if _, ok := m.match(p.body, pos, &scratch); ok {
			return 0, false
		}
		return pos, true

	case *repAtLeast:
		count := 0
		for {
			mark := len(*caps)
			end, ok := m.match(p.body, pos, caps)
			if !ok || end == pos {
				*caps = (*caps)[:mark]
				break
			}
			pos = end
			count++
		}
		if count < p.min {
			return 0, false
		}
		return pos, true

	case *repAtMost:
		for count := 0; count < p.max; count++ {
			mark := len(*caps)
			end, ok := m.match(p.body, pos, caps)
			if !ok || end == pos {
				*caps = (*caps)[:mark]
				break
			}
			pos = end
		}
		return pos, true

	case *capture:
		var subs []*Match
		end, ok := m.match(p.body, pos, &subs)
		if !ok {
			return 0, false
		}
		*caps = append(*caps, &Match{Type: p.label, Start: pos, End: end, Subs: subs})
		return end, true

	case *constant:
		*caps = append(*caps, &Match{Type: p.label, Start: pos, End: pos, Data: p.data})
		return pos, true

	case *grammarNode:
		return m.match(p.rules[p.start], pos, caps)

	case *ruleCall:
		return m.match(p.g.rules[p.name], pos, caps)

	case *openCall:
		// Unbound reference; NewGrammar rejects these before matching.
		return 0, false
	}
	return 0, false
}
