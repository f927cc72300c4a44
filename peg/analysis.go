// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package peg

import "sort"

// Nullable reports whether p can match the empty string. Rule references
// participating in a cycle are treated as non-nullable, which is the least
// fixpoint for "can succeed without consuming input".
func Nullable(p Pattern) bool {
	return nullable(p, map[*ruleCall]bool{})
}

func nullable(p Pattern, busy map[*ruleCall]bool) bool {
	switch p := p.(type) {
	case *literal:
		return len(p.bytes) == 0
	case *byteRange:
		return false
	case *sequence:
		return nullable(p.a, busy) && nullable(p.b, busy)
	case *choice:
		for _, alt := range p.alts {
			if nullable(alt, busy) {
				return true
			}
		}
		return false
	case *lookAhead, *lookBehind, *negation, *constant:
		return true
	case *repAtLeast:
		return p.min == 0
	case *repAtMost:
		return true
	case *capture:
		return nullable(p.body, busy)
	case *grammarNode:
		return nullable(p.rules[p.start], busy)
	case *ruleCall:
		if busy[p] {
			return false
		}
		busy[p] = true
		v := nullable(p.g.rules[p.name], busy)
		delete(busy, p)
		return v
	case *openCall:
		// Unresolved; rechecked by NewGrammar once the rule is known.
		return false
	}
	return false
}

// FixedLen returns the number of bytes p consumes when it matches, if that
// number is the same for every match.
func FixedLen(p Pattern) (int, bool) {
	switch p := p.(type) {
	case *literal:
		return len(p.bytes), true
	case *byteRange:
		return 1, true
	case *sequence:
		a, ok := FixedLen(p.a)
		if !ok {
			return 0, false
		}
		b, ok := FixedLen(p.b)
		if !ok {
			return 0, false
		}
		return a + b, true
	case *choice:
		n, ok := FixedLen(p.alts[0])
		if !ok {
			return 0, false
		}
		for _, alt := range p.alts[1:] {
			m, ok := FixedLen(alt)
			if !ok || m != n {
				return 0, false
			}
		}
		return n, true
	case *lookAhead, *lookBehind, *negation, *constant:
		return 0, true
	case *repAtLeast:
		return 0, false
	case *repAtMost:
		if p.max == 0 {
			return 0, true
		}
		return 0, false
	case *capture:
		return FixedLen(p.body)
	default:
		// Grammars and rule references are treated as variable length.
		return 0, false
	}
}

// HasCaptures reports whether a match of p can produce captures.
func HasCaptures(p Pattern) bool {
	return hasCaptures(p, map[*grammarNode]bool{})
}

func hasCaptures(p Pattern, seen map[*grammarNode]bool) bool {
	switch p := p.(type) {
	case *capture, *constant:
		return true
	case *sequence:
		return hasCaptures(p.a, seen) || hasCaptures(p.b, seen)
	case *choice:
		for _, alt := range p.alts {
			if hasCaptures(alt, seen) {
				return true
			}
		}
		return false
	case *repAtLeast:
		return hasCaptures(p.body, seen)
	case *repAtMost:
		return hasCaptures(p.body, seen)
	case *grammarNode:
		if seen[p] {
			return false
		}
		seen[p] = true
		for _, body := range p.rules {
			if hasCaptures(body, seen) {
				return true
			}
		}
		return false
	case *ruleCall:
		return hasCaptures(p.g, seen)
	default:
		// Predicates discard captures; literals and ranges have none.
		return false
	}
}

// checkLeftRecursion rejects grammars where some rule can re-enter itself
// without consuming input. The check walks the "reachable at the same input
// position" relation between rules.
func checkLeftRecursion(g *grammarNode, names []string) error {
	heads := make(map[string]map[string]bool, len(names))
	for _, name := range names {
		acc := map[string]bool{}
		headCalls(g.rules[name], acc)
		heads[name] = acc
	}

	for _, name := range names {
		if reaches(name, name, heads, map[string]bool{}) {
			return &Error{
				Code:    LeftRecursionErr,
				Rule:    name,
				Message: "rule '" + name + "' may be left recursive",
			}
		}
	}
	return nil
}

// headCalls records the rules that p can invoke before consuming any input.
func headCalls(p Pattern, acc map[string]bool) {
	switch p := p.(type) {
	case *sequence:
		headCalls(p.a, acc)
		if Nullable(p.a) {
			headCalls(p.b, acc)
		}
	case *choice:
		for _, alt := range p.alts {
			headCalls(alt, acc)
		}
	case *lookAhead:
		headCalls(p.body, acc)
	case *negation:
		headCalls(p.body, acc)
	case *repAtLeast:
		headCalls(p.body, acc)
	case *repAtMost:
		headCalls(p.body, acc)
	case *capture:
		headCalls(p.body, acc)
	case *ruleCall:
		acc[p.name] = true
	}
	// Nested grammars are closed over their own rules and cannot call out.
}

func reaches(from, target string, heads map[string]map[string]bool, seen map[string]bool) bool {
	next := make([]string, 0, len(heads[from]))
	for name := range heads[from] {
		next = append(next, name)
	}
	sort.Strings(next)

	for _, name := range next {
		if name == target {
			return true
		}
		if !seen[name] {
			seen[name] = true
			if reaches(name, target, heads, seen) {
				return true
			}
		}
	}
	return false
}
