// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"strings"
	"testing"
)

func TestUnmarshalBlock(t *testing.T) {
	input := `{
		"type": "block",
		"package": "num",
		"import_decls": [{"importpath": "word", "prefix": "w"}],
		"stmts": [
			{
				"type": "binding",
				"ref": {"localname": "digit"},
				"exp": {"type": "cs_range", "first": "0", "last": "9", "complement": false},
				"is_alias": true,
				"is_local": false
			},
			{
				"type": "binding",
				"ref": {"localname": "num"},
				"exp": {
					"type": "atleast",
					"min": 1,
					"exp": {"type": "ref", "localname": "digit"}
				},
				"is_alias": false,
				"is_local": false
			}
		]
	}`

	blk, err := UnmarshalBlock([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	if blk.Package != "num" {
		t.Fatalf("Expected package num, got %q", blk.Package)
	}
	if len(blk.Imports) != 1 || blk.Imports[0].Path != "word" || blk.Imports[0].Alias != "w" {
		t.Fatalf("Unexpected imports: %v", blk.Imports)
	}
	if len(blk.Stmts) != 2 {
		t.Fatalf("Expected 2 statements, got %d", len(blk.Stmts))
	}

	digit := blk.Stmts[0]
	if digit.Ref.Local != "digit" || !digit.Alias || digit.Local {
		t.Fatalf("Unexpected digit binding: %v", digit)
	}
	if _, ok := digit.Exp.(*CharsetRange); !ok {
		t.Fatalf("Expected cs_range expression, got %T", digit.Exp)
	}

	num := blk.Stmts[1]
	rep, ok := num.Exp.(*AtLeast)
	if !ok {
		t.Fatalf("Expected atleast expression, got %T", num.Exp)
	}
	if rep.Min != 1 {
		t.Fatalf("Expected min=1, got %d", rep.Min)
	}
	if r, ok := rep.Exp.(*Ref); !ok || r.Local != "digit" {
		t.Fatalf("Expected ref to digit, got %v", rep.Exp)
	}
}

func TestUnmarshalNodeKinds(t *testing.T) {
	tests := []struct {
		note  string
		input string
		check func(Node) bool
	}{
		{
			note:  "literal",
			input: `{"type": "literal", "value": "abc"}`,
			check: func(n Node) bool { l, ok := n.(*Literal); return ok && l.Value == "abc" },
		},
		{
			note:  "string",
			input: `{"type": "string", "value": "abc"}`,
			check: func(n Node) bool { s, ok := n.(*String); return ok && s.Value == "abc" },
		},
		{
			note:  "hashtag",
			input: `{"type": "hashtag", "value": "tag"}`,
			check: func(n Node) bool { h, ok := n.(*Hashtag); return ok && h.Value == "tag" },
		},
		{
			note:  "sequence",
			input: `{"type": "sequence", "exps": [{"type": "literal", "value": "a"}]}`,
			check: func(n Node) bool { s, ok := n.(*Sequence); return ok && len(s.Exps) == 1 },
		},
		{
			note:  "choice",
			input: `{"type": "choice", "exps": [{"type": "literal", "value": "a"}, {"type": "literal", "value": "b"}]}`,
			check: func(n Node) bool { c, ok := n.(*Choice); return ok && len(c.Exps) == 2 },
		},
		{
			note:  "predicate lookahead",
			input: `{"type": "predicate", "kind": "lookahead", "exp": {"type": "literal", "value": "a"}}`,
			check: func(n Node) bool { p, ok := n.(*Predicate); return ok && p.Kind == LookAhead },
		},
		{
			note:  "predicate negation",
			input: `{"type": "predicate", "kind": "negation", "exp": {"type": "literal", "value": "a"}}`,
			check: func(n Node) bool { p, ok := n.(*Predicate); return ok && p.Kind == Negation },
		},
		{
			note:  "named charset",
			input: `{"type": "cs_named", "name": "alpha", "complement": true}`,
			check: func(n Node) bool { c, ok := n.(*NamedCharset); return ok && c.Name == "alpha" && c.Complement },
		},
		{
			note:  "charset list",
			input: `{"type": "cs_list", "chars": ["a", "b"], "complement": false}`,
			check: func(n Node) bool { c, ok := n.(*CharsetList); return ok && len(c.Chars) == 2 },
		},
		{
			note: "charset exp over union",
			input: `{"type": "cs_exp", "complement": true, "cexp": {"type": "cs_union", "cexps": [
				{"type": "cs_range", "first": "0", "last": "9", "complement": false}]}}`,
			check: func(n Node) bool {
				c, ok := n.(*CharsetExp)
				if !ok || !c.Complement {
					return false
				}
				u, ok := c.CExp.(*CharsetUnion)
				return ok && len(u.CExps) == 1
			},
		},
		{
			note:  "cs_intersection",
			input: `{"type": "cs_intersection", "cexps": []}`,
			check: func(n Node) bool { _, ok := n.(*CharsetIntersection); return ok },
		},
		{
			note:  "atmost",
			input: `{"type": "atmost", "max": 3, "exp": {"type": "literal", "value": "a"}}`,
			check: func(n Node) bool { a, ok := n.(*AtMost); return ok && a.Max == 3 },
		},
		{
			note: "grammar",
			input: `{"type": "grammar", "rules": [{"type": "binding", "ref": {"localname": "S"},
				"exp": {"type": "literal", "value": "a"}, "is_alias": false, "is_local": false}]}`,
			check: func(n Node) bool { g, ok := n.(*Grammar); return ok && len(g.Rules) == 1 },
		},
		{
			note: "application",
			input: `{"type": "application", "ref": {"localname": "find"},
				"arglist": [{"type": "string", "value": "x"}]}`,
			check: func(n Node) bool {
				a, ok := n.(*Application)
				return ok && a.Ref.Local == "find" && len(a.Args) == 1
			},
		},
		{
			note:  "qualified ref",
			input: `{"type": "ref", "package": "word", "localname": "any"}`,
			check: func(n Node) bool { r, ok := n.(*Ref); return ok && r.Package == "word" && r.Local == "any" },
		},
		{
			note:  "sourceref",
			input: `{"type": "literal", "value": "a", "sourceref": {"s": 4, "e": 7, "origin": "x.rpl"}}`,
			check: func(n Node) bool {
				loc := n.Loc()
				return loc != nil && loc.Start == 4 && loc.End == 7 && loc.Origin == "x.rpl"
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			n, err := UnmarshalNode([]byte(tc.input))
			if err != nil {
				t.Fatal(err)
			}
			if !tc.check(n) {
				t.Fatalf("Unexpected node: %#v", n)
			}
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		note   string
		input  string
		expErr string
	}{
		{note: "missing type", input: `{"value": "a"}`, expErr: "missing"},
		{note: "unknown type", input: `{"type": "mystery"}`, expErr: "unknown AST node type"},
		{note: "bad predicate kind", input: `{"type": "predicate", "kind": "behind", "exp": {"type": "literal", "value": "a"}}`, expErr: "unknown predicate kind"},
		{note: "not a block", input: `{"type": "literal", "value": "a"}`, expErr: "expected a block"},
	}
	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			var err error
			if tc.note == "not a block" {
				_, err = UnmarshalBlock([]byte(tc.input))
			} else {
				_, err = UnmarshalNode([]byte(tc.input))
			}
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tc.expErr) {
				t.Fatalf("Expected error containing %q, got %q", tc.expErr, err.Error())
			}
		})
	}
}

func TestNodeStrings(t *testing.T) {
	tests := []struct {
		note string
		node Node
		exp  string
	}{
		{note: "ref", node: &Ref{Local: "a"}, exp: "a"},
		{note: "qualified ref", node: &Ref{Package: "p", Local: "a"}, exp: "p.a"},
		{note: "literal", node: &Literal{Value: "hi"}, exp: `"hi"`},
		{note: "hashtag", node: &Hashtag{Value: "x"}, exp: "#x"},
		{note: "range", node: &CharsetRange{First: "0", Last: "9"}, exp: "[0-9]"},
		{note: "complement range", node: &CharsetRange{First: "0", Last: "9", Complement: true}, exp: "[^0-9]"},
		{note: "named", node: &NamedCharset{Name: "alpha"}, exp: "[:alpha:]"},
		{
			note: "star",
			node: &AtLeast{Min: 0, Exp: &CharsetRange{First: "0", Last: "9"}},
			exp:  "[0-9]*",
		},
		{
			note: "plus",
			node: &AtLeast{Min: 1, Exp: &CharsetRange{First: "0", Last: "9"}},
			exp:  "[0-9]+",
		},
		{
			note: "optional",
			node: &AtMost{Max: 1, Exp: &Literal{Value: "a"}},
			exp:  `"a"?`,
		},
		{
			note: "negation",
			node: &Predicate{Kind: Negation, Exp: &Literal{Value: "x"}},
			exp:  `!"x"`,
		},
		{
			note: "binding",
			node: &Binding{Ref: &Ref{Local: "a"}, Exp: &Literal{Value: "x"}, Alias: true},
			exp:  `alias a = "x"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			if got := tc.node.String(); got != tc.exp {
				t.Fatalf("Expected %q, got %q", tc.exp, got)
			}
		})
	}
}
