// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package compile

import (
	"strings"
	"testing"

	"github.com/rpl-lang/rpl/ast"
	"github.com/rpl-lang/rpl/peg"
)

func compileTestBlock(t *testing.T, blk *ast.Block, req *LoadRequest) (*Compiler, *Env, bool) {
	t.Helper()
	c := NewCompiler()
	env := NewStandardEnv().Extend()
	_, ok := c.CompileBlock(blk, env, req)
	return c, env, ok
}

func lookupPattern(t *testing.T, env *Env, local string) *Pattern {
	t.Helper()
	v, ok := env.LookupLocal(local)
	if !ok {
		t.Fatalf("Expected %s to be bound", local)
	}
	p, ok := v.(*Pattern)
	if !ok {
		t.Fatalf("Expected %s to be a pattern, got %s", local, v.Kind())
	}
	return p
}

func TestCompileBlockSimple(t *testing.T) {
	// a = [0-9], b = a+ matched against "123": one b capture spanning the
	// whole input with one a sub-capture per digit.
	blk := block(
		binding("a", csRange("0", "9")),
		binding("b", atleast(1, ref("a"))),
	)
	c, env, ok := compileTestBlock(t, blk, nil)
	if !ok {
		t.Fatalf("Unexpected violations: %v", c.Violations())
	}

	b := lookupPattern(t, env, "b")
	result := peg.MatchString(b.Peg, "123")
	if result == nil || result.End != 3 {
		t.Fatalf("Expected match to 3, got %v", result)
	}
	if len(result.Captures) != 1 {
		t.Fatalf("Expected one capture, got %d", len(result.Captures))
	}
	top := result.Captures[0]
	if top.Type != "b" || top.Start != 0 || top.End != 3 {
		t.Fatalf("Unexpected top capture: %+v", top)
	}
	if len(top.Subs) != 3 {
		t.Fatalf("Expected three a sub-captures, got %d", len(top.Subs))
	}
	for i, sub := range top.Subs {
		if sub.Type != "a" || sub.Start != i || sub.End != i+1 {
			t.Fatalf("Unexpected sub-capture %d: %+v", i, sub)
		}
	}
}

func TestCompileBlockNegation(t *testing.T) {
	// x = "hi", y = !x: y fails on "hi" and consumes nothing on "bye".
	blk := block(
		binding("x", lit("hi")),
		binding("y", pred(ast.Negation, ref("x"))),
	)
	c, env, ok := compileTestBlock(t, blk, nil)
	if !ok {
		t.Fatalf("Unexpected violations: %v", c.Violations())
	}

	y := lookupPattern(t, env, "y")
	assertNoMatch(t, y.Peg, "hi")
	assertMatchEnd(t, y.Peg, "bye", 0)
}

func TestCompileBlockPartialMatch(t *testing.T) {
	// digit = [0-9], num = digit+ against "42x" matches "42" labeled num.
	blk := block(
		binding("digit", csRange("0", "9")),
		binding("num", atleast(1, ref("digit"))),
	)
	c, env, ok := compileTestBlock(t, blk, nil)
	if !ok {
		t.Fatalf("Unexpected violations: %v", c.Violations())
	}

	num := lookupPattern(t, env, "num")
	result := peg.MatchString(num.Peg, "42x")
	if result == nil || result.End != 2 {
		t.Fatalf("Expected match to 2, got %v", result)
	}
	if result.Captures[0].Type != "num" {
		t.Fatalf("Expected capture labeled num, got %q", result.Captures[0].Type)
	}
}

func TestCompileBlockAliasNeutrality(t *testing.T) {
	// alias a = [0-9]; b = a: b matches like a and captures as b.
	blk := block(
		aliasBinding("a", csRange("0", "9")),
		binding("b", ref("a")),
	)
	c, env, ok := compileTestBlock(t, blk, nil)
	if !ok {
		t.Fatalf("Unexpected violations: %v", c.Violations())
	}

	a := lookupPattern(t, env, "a")
	if !a.Alias {
		t.Fatal("Expected a to be an alias")
	}
	if a.Uncap != nil {
		t.Fatal("Expected alias binding to carry no capture wrapper")
	}

	b := lookupPattern(t, env, "b")
	if b.Alias {
		t.Fatal("Expected b not to be an alias")
	}
	result := peg.MatchString(b.Peg, "7")
	if result == nil || result.End != 1 {
		t.Fatalf("Expected match to 1, got %v", result)
	}
	if len(result.Captures) != 1 || result.Captures[0].Type != "b" {
		t.Fatalf("Expected a single capture labeled b, got %v", result.Captures)
	}
}

func TestCompileBlockRelabeling(t *testing.T) {
	// p1 = [0-9]; p2 = p1: matching p2 captures as p2, not p1.
	blk := block(
		binding("p1", csRange("0", "9")),
		binding("p2", ref("p1")),
	)
	c, env, ok := compileTestBlock(t, blk, nil)
	if !ok {
		t.Fatalf("Unexpected violations: %v", c.Violations())
	}

	p2 := lookupPattern(t, env, "p2")
	result := peg.MatchString(p2.Peg, "5")
	if result == nil {
		t.Fatal("Expected match")
	}
	if len(result.Captures) != 1 || result.Captures[0].Type != "p2" {
		t.Fatalf("Expected a single capture labeled p2, got %v", result.Captures)
	}
	if len(result.Captures[0].Subs) != 0 {
		t.Fatalf("Expected no nested p1 capture, got %v", result.Captures[0].Subs)
	}
}

func TestCompileBlockForwardRefs(t *testing.T) {
	// a = b, b = a: both stay Novalue, one unbound violation each.
	blk := block(
		binding("a", ref("b")),
		binding("b", ref("a")),
	)
	c, env, ok := compileTestBlock(t, blk, nil)
	if ok {
		t.Fatal("Expected compilation to report violations")
	}

	errs := 0
	for _, v := range c.Violations() {
		if v.IsErr() {
			errs++
			if !strings.Contains(v.Message, "unbound identifier") {
				t.Fatalf("Expected unbound identifier violation, got %q", v.Message)
			}
		}
	}
	if errs != 2 {
		t.Fatalf("Expected 2 violations, got %d", errs)
	}

	for _, name := range []string{"a", "b"} {
		v, bound := env.LookupLocal(name)
		if !bound {
			t.Fatalf("Expected %s to remain bound", name)
		}
		if _, isNovalue := v.(*Novalue); !isNovalue {
			t.Fatalf("Expected %s to remain Novalue, got %s", name, v.Kind())
		}
	}
}

func TestCompileBlockContinuesAfterError(t *testing.T) {
	blk := block(
		binding("bad", lit(`\q`)),
		binding("good", lit("x")),
	)
	c, env, ok := compileTestBlock(t, blk, nil)
	if ok {
		t.Fatal("Expected compilation to report violations")
	}
	if len(c.Violations()) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(c.Violations()))
	}

	good := lookupPattern(t, env, "good")
	assertMatchEnd(t, good.Peg, "x", 1)

	if v, _ := env.LookupLocal("bad"); v.Kind() != "undefined" {
		t.Fatalf("Expected bad to remain Novalue, got %s", v.Kind())
	}
}

func TestCompileBlockRebindingNote(t *testing.T) {
	blk := block(
		binding("p", lit("a")),
		binding("p", lit("b")),
	)
	c, _, ok := compileTestBlock(t, blk, nil)
	if !ok {
		t.Fatalf("Unexpected errors: %v", c.Violations())
	}

	notes := 0
	for _, v := range c.Violations() {
		if v.Kind == InfoNote && strings.Contains(v.Message, "rebinding identifier: p") {
			notes++
		}
	}
	if notes != 1 {
		t.Fatalf("Expected one rebinding note, got %d", notes)
	}
}

func TestCompileBlockLocalAndExport(t *testing.T) {
	blk := block(
		binding("pub", lit("a")),
		&ast.Binding{Ref: ref("priv"), Exp: lit("b"), Local: true},
	)
	c, env, ok := compileTestBlock(t, blk, nil)
	if !ok {
		t.Fatalf("Unexpected violations: %v", c.Violations())
	}

	if p := lookupPattern(t, env, "pub"); !p.Exported {
		t.Fatal("Expected pub to be exported")
	}
	if p := lookupPattern(t, env, "priv"); p.Exported {
		t.Fatal("Expected priv not to be exported")
	}
}

func TestCompileBlockStringBinding(t *testing.T) {
	blk := block(
		binding("s", str("hello")),
		binding("m", &ast.Application{Ref: ref("message"), Args: []ast.Node{ref("s")}}),
	)
	c, env, ok := compileTestBlock(t, blk, nil)

	// Whether a string binding is addressable as a pattern is open; here
	// it binds as a string and pattern contexts reject it, while function
	// arguments cannot reference it either (refs compile to patterns).
	v, bound := env.LookupLocal("s")
	if !bound {
		t.Fatal("Expected s to be bound")
	}
	if s, isString := v.(*String); !isString || s.Value != "hello" {
		t.Fatalf("Expected s bound to the string value, got %#v", v)
	}
	if ok {
		t.Fatalf("Expected the reference from a pattern context to fail: %v", c.Violations())
	}
}

func TestCompileBlockPrefixes(t *testing.T) {
	blk := func() *ast.Block {
		b := block(binding("word", atleast(1, csRange("a", "z"))))
		b.Package = "lex"
		return b
	}

	tests := []struct {
		note     string
		req      *LoadRequest
		expLabel string
	}{
		{
			note:     "no request",
			req:      nil,
			expLabel: "word",
		},
		{
			note:     "request without import path",
			req:      &LoadRequest{Prefix: "w", PackageName: "lex"},
			expLabel: "word",
		},
		{
			note:     "import with package name",
			req:      &LoadRequest{ImportPath: "lex", PackageName: "lex"},
			expLabel: "lex.word",
		},
		{
			note:     "import with prefix override",
			req:      &LoadRequest{ImportPath: "lex", Prefix: "w", PackageName: "lex"},
			expLabel: "w.word",
		},
		{
			note:     "import with dot prefix suppresses",
			req:      &LoadRequest{ImportPath: "lex", Prefix: ".", PackageName: "lex"},
			expLabel: "word",
		},
		{
			note:     "import without prefix or package name",
			req:      &LoadRequest{ImportPath: "lex"},
			expLabel: "word",
		},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			c, env, ok := compileTestBlock(t, blk(), tc.req)
			if !ok {
				t.Fatalf("Unexpected violations: %v", c.Violations())
			}
			p := lookupPattern(t, env, "word")
			result := peg.MatchString(p.Peg, "abc")
			if result == nil {
				t.Fatal("Expected match")
			}
			if got := result.Captures[0].Type; got != tc.expLabel {
				t.Fatalf("Expected capture label %q, got %q", tc.expLabel, got)
			}
		})
	}
}

func TestCompileBlockReturnsPackage(t *testing.T) {
	blk := block(binding("p", lit("a")))
	blk.Package = "mypkg"
	blk.Imports = []*ast.Import{{Path: "other/pkg"}}

	c := NewCompiler()
	env := NewStandardEnv().Extend()
	pkg, ok := c.CompileBlock(blk, env, nil)
	if !ok {
		t.Fatalf("Unexpected violations: %v", c.Violations())
	}
	if pkg != "mypkg" {
		t.Fatalf("Expected package mypkg, got %q", pkg)
	}
}

func TestCompileBlockGrammarBinding(t *testing.T) {
	// A grammar binding is not re-wrapped: the capture lives on the start
	// rule compiled inside the grammar.
	blk := block(
		binding("S", grammar(
			binding("S", alt(seq(lit("a"), ref("S"), lit("b")), lit(""))),
		)),
	)
	c, env, ok := compileTestBlock(t, blk, nil)
	if !ok {
		t.Fatalf("Unexpected violations: %v", c.Violations())
	}

	s := lookupPattern(t, env, "S")
	if s.Uncap != nil {
		t.Fatal("Expected grammar binding to carry no uncap")
	}
	result := peg.MatchString(s.Peg, "ab")
	if result == nil || len(result.Captures) != 1 || result.Captures[0].Type != "S" {
		t.Fatalf("Expected a single S capture, got %v", result)
	}
}

func TestCompileBlockPackageLookup(t *testing.T) {
	// Compile a package, import it under a prefix, reference through it.
	pkgEnv := NewStandardEnv().Extend()
	c := NewCompiler()
	pkgBlock := block(binding("word", atleast(1, csRange("a", "z"))))
	pkgBlock.Package = "lex"
	if _, ok := c.CompileBlock(pkgBlock, pkgEnv, &LoadRequest{ImportPath: "lex", PackageName: "lex"}); !ok {
		t.Fatalf("Unexpected violations: %v", c.Violations())
	}

	env := NewStandardEnv().Extend()
	env.ImportPackage("lex", pkgEnv)

	c2 := NewCompiler()
	blk := block(binding("w", &ast.Sequence{Exps: []ast.Node{pref("lex", "word")}}))
	if _, ok := c2.CompileBlock(blk, env, nil); !ok {
		t.Fatalf("Unexpected violations: %v", c2.Violations())
	}

	w := lookupPattern(t, env, "w")
	result := peg.MatchString(w.Peg, "abc")
	if result == nil {
		t.Fatal("Expected match")
	}
	if result.Captures[0].Type != "w" {
		t.Fatalf("Expected capture labeled w, got %q", result.Captures[0].Type)
	}
}
