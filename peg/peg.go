// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package peg provides the executable pattern primitives that the RPL
// compiler emits against: literals, byte ranges, sequence, ordered choice,
// predicates, bounded repetition, captures, and grammar fixpoints. Patterns
// are immutable once constructed and safe for concurrent matching.
package peg

import "sort"

// Pattern is an executable parsing expression. Values are created through
// the constructors in this package and never mutated afterwards.
type Pattern interface {
	pattern()
}

type literal struct {
	bytes []byte
}

type byteRange struct {
	lo, hi byte
}

type sequence struct {
	a, b Pattern
}

type choice struct {
	alts []Pattern
}

type lookAhead struct {
	body Pattern
}

// lookBehind matches when body matches the n bytes immediately preceding
// the cursor. n is fixed at construction time.
type lookBehind struct {
	body Pattern
	n    int
}

type negation struct {
	body Pattern
}

type repAtLeast struct {
	body Pattern
	min  int
}

type repAtMost struct {
	body Pattern
	max  int
}

type capture struct {
	label string
	body  Pattern
}

// constant is a zero-width capture that yields fixed data instead of a byte
// span. Used by builtins such as message().
type constant struct {
	label string
	data  string
}

type grammarNode struct {
	rules map[string]Pattern
	start string
}

// openCall is an unresolved rule reference produced by V. It is only valid
// inside a grammar and is bound to its grammar by NewGrammar.
type openCall struct {
	name string
}

// ruleCall is an openCall that has been bound to its grammar.
type ruleCall struct {
	name string
	g    *grammarNode
}

func (*literal) pattern()     {}
func (*byteRange) pattern()   {}
func (*sequence) pattern()    {}
func (*choice) pattern()      {}
func (*lookAhead) pattern()   {}
func (*lookBehind) pattern()  {}
func (*negation) pattern()    {}
func (*repAtLeast) pattern()  {}
func (*repAtMost) pattern()   {}
func (*capture) pattern()     {}
func (*constant) pattern()    {}
func (*grammarNode) pattern() {}
func (*openCall) pattern()    {}
func (*ruleCall) pattern()    {}

// maxBehind bounds the fixed length of lookbehind patterns.
const maxBehind = 255

// Lit returns a pattern matching the literal byte string s. Lit("") matches
// the empty string.
func Lit(s string) Pattern {
	return &literal{bytes: []byte(s)}
}

// ByteRange returns a pattern matching one byte in [lo,hi].
func ByteRange(lo, hi byte) Pattern {
	return &byteRange{lo: lo, hi: hi}
}

// AnyByte returns a pattern matching any single byte.
func AnyByte() Pattern {
	return &byteRange{lo: 0x00, hi: 0xFF}
}

// Seq returns the ordered sequence of a then b.
func Seq(a, b Pattern) Pattern {
	return &sequence{a: a, b: b}
}

// Choice returns the ordered (PEG) choice over alts; the first alternative
// to match wins and later alternatives are not retried once an alternative
// has committed.
func Choice(alts ...Pattern) Pattern {
	if len(alts) == 1 {
		return alts[0]
	}
	cpy := make([]Pattern, len(alts))
	copy(cpy, alts)
	return &choice{alts: cpy}
}

// LookAhead returns a pattern that succeeds iff p matches next, consuming
// nothing.
func LookAhead(p Pattern) Pattern {
	return &lookAhead{body: p}
}

// Negation returns a pattern that succeeds iff p does not match next,
// consuming nothing.
func Negation(p Pattern) Pattern {
	return &negation{body: p}
}

// LookBehind returns a pattern that succeeds iff p matches the bytes
// immediately preceding the cursor. p must have a fixed length of at most
// 255 bytes and must not contain captures; violations are reported as
// *Error values with codes NotFixedLenErr, TooLongErr and HasCapturesErr.
func LookBehind(p Pattern) (Pattern, error) {
	n, ok := FixedLen(p)
	if !ok {
		return nil, &Error{Code: NotFixedLenErr, Message: "pattern does not have fixed length"}
	}
	if n > maxBehind {
		return nil, &Error{Code: TooLongErr, Message: "pattern too long"}
	}
	if HasCaptures(p) {
		return nil, &Error{Code: HasCapturesErr, Message: "pattern has captures"}
	}
	return &lookBehind{body: p, n: n}, nil
}

// RepAtLeast returns a pattern matching p at least min times, greedily.
// Bodies that can match the empty string are rejected with EmptyLoopErr
// since they would loop forever.
func RepAtLeast(p Pattern, min int) (Pattern, error) {
	if Nullable(p) {
		return nil, &Error{Code: EmptyLoopErr, Message: "loop body may accept empty string"}
	}
	return &repAtLeast{body: p, min: min}, nil
}

// RepAtMost returns a pattern matching p at most max times, greedily.
// Nullable bodies are rejected for the same reason as in RepAtLeast.
func RepAtMost(p Pattern, max int) (Pattern, error) {
	if Nullable(p) {
		return nil, &Error{Code: EmptyLoopErr, Message: "loop body may accept empty string"}
	}
	return &repAtMost{body: p, max: max}, nil
}

// Capture wraps p so that a successful match produces a record tagged with
// label carrying the matched byte span and any sub-captures.
func Capture(label string, p Pattern) Pattern {
	return &capture{label: label, body: p}
}

// Constant returns a zero-width pattern that always succeeds and emits a
// capture tagged label with the given data in place of a byte span.
func Constant(label, data string) Pattern {
	return &constant{label: label, data: data}
}

// V returns a reference to the rule named name within the enclosing
// grammar. The reference is resolved by NewGrammar.
func V(name string) Pattern {
	return &openCall{name: name}
}

// NewGrammar builds the mutually recursive fixpoint over rules, starting at
// start. Every V reference must name a rule in rules, no rule may be left
// recursive, and no repetition body may match empty once references are
// resolved; violations are reported as *Error values.
func NewGrammar(rules map[string]Pattern, start string) (Pattern, error) {
	if _, ok := rules[start]; !ok {
		return nil, &Error{Code: UndefinedRuleErr, Rule: start, Message: "rule '" + start + "' is not defined"}
	}

	g := &grammarNode{rules: make(map[string]Pattern, len(rules)), start: start}

	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		bound, err := bindCalls(rules[name], rules, g)
		if err != nil {
			return nil, err
		}
		g.rules[name] = bound
	}

	if err := checkLoops(g, names); err != nil {
		return nil, err
	}
	if err := checkLeftRecursion(g, names); err != nil {
		return nil, err
	}
	return g, nil
}

// bindCalls rewrites open calls in p into calls bound to g. Subtrees without
// open calls are shared with the input. Nested grammars are already closed
// over their own rules and are not descended into.
func bindCalls(p Pattern, rules map[string]Pattern, g *grammarNode) (Pattern, error) {
	switch p := p.(type) {
	case *openCall:
		if _, ok := rules[p.name]; !ok {
			return nil, &Error{Code: UndefinedRuleErr, Rule: p.name, Message: "rule '" + p.name + "' is not defined"}
		}
		return &ruleCall{name: p.name, g: g}, nil
	case *sequence:
		a, err := bindCalls(p.a, rules, g)
		if err != nil {
			return nil, err
		}
		b, err := bindCalls(p.b, rules, g)
		if err != nil {
			return nil, err
		}
		if a == p.a && b == p.b {
			return p, nil
		}
		return &sequence{a: a, b: b}, nil
	case *choice:
		alts := make([]Pattern, len(p.alts))
		changed := false
		for i, alt := range p.alts {
			bound, err := bindCalls(alt, rules, g)
			if err != nil {
				return nil, err
			}
			alts[i] = bound
			changed = changed || bound != alt
		}
		if !changed {
			return p, nil
		}
		return &choice{alts: alts}, nil
	case *lookAhead:
		body, err := bindCalls(p.body, rules, g)
		if err != nil || body == p.body {
			return p, err
		}
		return &lookAhead{body: body}, nil
	case *lookBehind:
		// Lookbehind bodies have fixed length and therefore no calls.
		return p, nil
	case *negation:
		body, err := bindCalls(p.body, rules, g)
		if err != nil || body == p.body {
			return p, err
		}
		return &negation{body: body}, nil
	case *repAtLeast:
		body, err := bindCalls(p.body, rules, g)
		if err != nil || body == p.body {
			return p, err
		}
		return &repAtLeast{body: body, min: p.min}, nil
	case *repAtMost:
		body, err := bindCalls(p.body, rules, g)
		if err != nil || body == p.body {
			return p, err
		}
		return &repAtMost{body: body, max: p.max}, nil
	case *capture:
		body, err := bindCalls(p.body, rules, g)
		if err != nil || body == p.body {
			return p, err
		}
		return &capture{label: p.label, body: body}, nil
	default:
		return p, nil
	}
}

// checkLoops re-validates repetition bodies now that rule references can be
// resolved: a body that matches empty through a rule would loop forever.
func checkLoops(g *grammarNode, names []string) error {
	var walk func(p Pattern) error
	walk = func(p Pattern) error {
		switch p := p.(type) {
		case *sequence:
			if err := walk(p.a); err != nil {
				return err
			}
			return walk(p.b)
		case *choice:
			for _, alt := range p.alts {
				if err := walk(alt); err != nil {
					return err
				}
			}
			return nil
		case *lookAhead:
			return walk(p.body)
		case *negation:
			return walk(p.body)
		case *repAtLeast:
			if Nullable(p.body) {
				return &Error{Code: EmptyLoopErr, Message: "loop body may accept empty string"}
			}
			return walk(p.body)
		case *repAtMost:
			if Nullable(p.body) {
				return &Error{Code: EmptyLoopErr, Message: "loop body may accept empty string"}
			}
			return walk(p.body)
		case *capture:
			return walk(p.body)
		default:
			return nil
		}
	}
	for _, name := range names {
		if err := walk(g.rules[name]); err != nil {
			return err
		}
	}
	return nil
}
