// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package compile turns parsed and expanded RPL syntax trees into
// executable pattern objects. The surface parser and the macro expander
// run before this package; the module loader satisfies imports before a
// block arrives here.
package compile

import (
	"strings"

	"github.com/rpl-lang/rpl/ast"
	"github.com/rpl-lang/rpl/internal/levenshtein"
	"github.com/rpl-lang/rpl/logging"
	"github.com/rpl-lang/rpl/metrics"
	"github.com/rpl-lang/rpl/peg"
)

const (
	whoExpression = "expression compiler"
	whoGrammar    = "grammar compiler"
	whoBlock      = "block compiler"
	whoCompiler   = "compiler"
)

// Compiler holds the state of a compilation: the violations recorded so
// far, plus the logger and metrics sinks. A Compiler must not be shared
// between concurrent block compilations of the same environment.
type Compiler struct {
	violations Violations
	logger     logging.Logger
	metrics    metrics.Metrics

	// prefix is the effective package prefix for capture labels while a
	// block is being compiled.
	prefix string
}

// NewCompiler returns a new empty compiler.
func NewCompiler() *Compiler {
	return &Compiler{
		logger:  logging.NewNoOpLogger(),
		metrics: metrics.NoOp(),
	}
}

// WithLogger sets the logger used for per-binding debug output.
func (c *Compiler) WithLogger(l logging.Logger) *Compiler {
	c.logger = l
	return c
}

// WithMetrics sets the metrics sink timing the compilation passes.
func (c *Compiler) WithMetrics(m metrics.Metrics) *Compiler {
	c.metrics = m
	return c
}

// Violations returns the diagnostics recorded so far, in compilation
// order.
func (c *Compiler) Violations() Violations {
	return c.violations
}

func (c *Compiler) report(v *Violation) {
	c.violations = append(c.violations, v)
}

// CompileExpression compiles an ad-hoc top-level expression, e.g. the
// argument of a match operation. The result always produces a capture: a
// reference to a non-alias binding keeps its own label, everything else is
// wrapped with the anonymous label "*" (grammars included, the one case a
// grammar is ever re-wrapped).
func (c *Compiler) CompileExpression(exp ast.Node, env *Env) (*Pattern, error) {
	v, err := c.compileExp(exp, env)
	if err != nil {
		c.report(err.(*Violation))
		return nil, err
	}
	pat, ok := v.(*Pattern)
	if !ok {
		verr := compileErrf(whoExpression, exp, "type mismatch: expected a pattern, but expression is a %s", v.Kind())
		c.report(verr)
		return nil, verr
	}

	if _, isRef := exp.(*ast.Ref); isRef {
		if pat.Alias {
			wrapPattern(pat, "*")
		}
	} else {
		forceWrapPattern(pat, "*")
	}
	pat.Alias = false
	return pat, nil
}

// compileExp dispatches on the AST node kind. It returns the compiled
// binding value; failures are returned as *Violation errors for the block
// compiler to record.
func (c *Compiler) compileExp(exp ast.Node, env *Env) (Value, error) {
	switch exp := exp.(type) {
	case *ast.Literal:
		return c.compileLiteral(exp)
	case *ast.String:
		return c.compileString(exp)
	case *ast.Hashtag:
		return &Hashtag{Value: exp.Value}, nil
	case *ast.Sequence:
		return c.compileSequence(exp, env)
	case *ast.Choice:
		return c.compileChoice(exp, env)
	case *ast.Predicate:
		return c.compilePredicate(exp, env)
	case *ast.NamedCharset:
		return c.compileNamedCharset(exp)
	case *ast.CharsetRange:
		return c.compileCharsetRange(exp)
	case *ast.CharsetList:
		return c.compileCharsetList(exp)
	case *ast.CharsetExp:
		return c.compileCharsetExp(exp, env)
	case *ast.CharsetIntersection:
		return nil, compileErrf(whoExpression, exp, "character set intersection is not implemented")
	case *ast.CharsetDifference:
		return nil, compileErrf(whoExpression, exp, "character set difference is not implemented")
	case *ast.AtLeast:
		return c.compileAtLeast(exp, env)
	case *ast.AtMost:
		return c.compileAtMost(exp, env)
	case *ast.Ref:
		return c.compileRef(exp, env)
	case *ast.Application:
		return c.compileApplication(exp, env)
	case *ast.Grammar:
		return c.compileGrammar(exp, env)
	default:
		return nil, compileErrf(whoExpression, exp, "invalid expression: %s", exp)
	}
}

// compilePatternExp compiles exp and requires the result to be a pattern.
func (c *Compiler) compilePatternExp(exp ast.Node, env *Env) (*Pattern, error) {
	v, err := c.compileExp(exp, env)
	if err != nil {
		return nil, err
	}
	p, ok := v.(*Pattern)
	if !ok {
		return nil, compileErrf(whoExpression, exp, "invalid expression: %s", exp)
	}
	return p, nil
}

func (c *Compiler) compileLiteral(exp *ast.Literal) (Value, error) {
	decoded, err := unescapeLiteral(exp.Value)
	if err != nil {
		return nil, compileErrf(whoExpression, exp, "invalid escape sequence in literal: %s", err)
	}
	return &Pattern{Peg: peg.Lit(decoded), AST: exp}, nil
}

func (c *Compiler) compileString(exp *ast.String) (Value, error) {
	decoded, err := unescapeLiteral(exp.Value)
	if err != nil {
		return nil, compileErrf(whoExpression, exp, "invalid escape sequence in string: %s", err)
	}
	return &String{Value: decoded}, nil
}

func (c *Compiler) compileSequence(exp *ast.Sequence, env *Env) (Value, error) {
	if len(exp.Exps) == 0 {
		return nil, compileErrf(whoCompiler, exp, "invalid expression: empty sequence")
	}
	first, err := c.compilePatternExp(exp.Exps[0], env)
	if err != nil {
		return nil, err
	}
	acc := first.Peg
	for _, sub := range exp.Exps[1:] {
		p, err := c.compilePatternExp(sub, env)
		if err != nil {
			return nil, err
		}
		acc = peg.Seq(acc, p.Peg)
	}
	return &Pattern{Peg: acc, AST: exp}, nil
}

func (c *Compiler) compileChoice(exp *ast.Choice, env *Env) (Value, error) {
	if len(exp.Exps) == 0 {
		return nil, compileErrf(whoCompiler, exp, "invalid expression: empty choice")
	}
	alts := make([]peg.Pattern, len(exp.Exps))
	for i, sub := range exp.Exps {
		p, err := c.compilePatternExp(sub, env)
		if err != nil {
			return nil, err
		}
		alts[i] = p.Peg
	}
	return &Pattern{Peg: peg.Choice(alts...), AST: exp}, nil
}

func (c *Compiler) compilePredicate(exp *ast.Predicate, env *Env) (Value, error) {
	body, err := c.compilePatternExp(exp.Exp, env)
	if err != nil {
		return nil, err
	}
	switch exp.Kind {
	case ast.LookAhead:
		return &Pattern{Peg: peg.LookAhead(body.Peg), AST: exp}, nil
	case ast.Negation:
		return &Pattern{Peg: peg.Negation(body.Peg), AST: exp}, nil
	case ast.LookBehind:
		p, err := peg.LookBehind(body.Peg)
		if err != nil {
			code, _ := peg.CodeOf(err)
			switch code {
			case peg.NotFixedLenErr:
				return nil, compileErrf(whoExpression, exp, "lookbehind pattern does not have fixed length: %s", exp.Exp)
			case peg.TooLongErr:
				return nil, compileErrf(whoExpression, exp, "lookbehind pattern too long: %s", exp.Exp)
			case peg.HasCapturesErr:
				return nil, compileErrf(whoExpression, exp, "lookbehind pattern has captures: %s", exp.Exp)
			default:
				return nil, compileErrf(whoCompiler, exp, "peg compilation error: %s", err)
			}
		}
		return &Pattern{Peg: p, AST: exp}, nil
	default:
		return nil, compileErrf(whoExpression, exp, "invalid expression: %s", exp)
	}
}

func (c *Compiler) compileNamedCharset(exp *ast.NamedCharset) (Value, error) {
	p, ok := localeCharsets[exp.Name]
	if !ok {
		return nil, compileErrf(whoExpression, exp, "unknown named charset: %s", exp.Name)
	}
	if exp.Complement {
		p = complement(p)
	}
	return &Pattern{Peg: p, AST: exp}, nil
}

func (c *Compiler) compileCharsetRange(exp *ast.CharsetRange) (Value, error) {
	first, err := unescapeCharsetChar(exp.First)
	if err != nil {
		return nil, compileErrf(whoExpression, exp, "invalid escape sequence in character set: %s", err)
	}
	last, err := unescapeCharsetChar(exp.Last)
	if err != nil {
		return nil, compileErrf(whoExpression, exp, "invalid escape sequence in character set: %s", err)
	}
	if len(first) != 1 || len(last) != 1 {
		return nil, compileErrf(whoExpression, exp, "character set range endpoints must be single bytes: %s", exp)
	}
	p := peg.ByteRange(first[0], last[0])
	if exp.Complement {
		p = complement(p)
	}
	return &Pattern{Peg: p, AST: exp}, nil
}

func (c *Compiler) compileCharsetList(exp *ast.CharsetList) (Value, error) {
	if len(exp.Chars) == 0 {
		return nil, compileErrf(whoCompiler, exp, "invalid expression: empty character list")
	}
	alts := make([]peg.Pattern, len(exp.Chars))
	for i, ch := range exp.Chars {
		decoded, err := unescapeCharsetChar(ch)
		if err != nil {
			return nil, compileErrf(whoExpression, exp, "invalid escape sequence in character set: %s", err)
		}
		alts[i] = peg.Lit(decoded)
	}
	p := peg.Choice(alts...)
	if exp.Complement {
		p = complement(p)
	}
	return &Pattern{Peg: p, AST: exp}, nil
}

func (c *Compiler) compileCharsetExp(exp *ast.CharsetExp, env *Env) (Value, error) {
	comp := exp.Complement
	inner := exp.CExp

	// Nested [[...]] forms collapse: the complements cancel or combine.
	for {
		ce, ok := inner.(*ast.CharsetExp)
		if !ok {
			break
		}
		comp = comp != ce.Complement
		inner = ce.CExp
	}

	switch inner := inner.(type) {
	case *ast.CharsetUnion:
		if len(inner.CExps) == 0 {
			return nil, compileErrf(whoCompiler, exp, "invalid expression: empty character set union")
		}
		alts := make([]peg.Pattern, len(inner.CExps))
		for i, sub := range inner.CExps {
			p, err := c.compilePatternExp(sub, env)
			if err != nil {
				return nil, err
			}
			alts[i] = p.Peg
		}
		p := peg.Choice(alts...)
		if comp {
			p = complement(p)
		}
		return &Pattern{Peg: p, AST: exp}, nil
	case *ast.CharsetIntersection:
		return nil, compileErrf(whoExpression, exp, "character set intersection is not implemented")
	case *ast.CharsetDifference:
		return nil, compileErrf(whoExpression, exp, "character set difference is not implemented")
	case *ast.NamedCharset:
		cpy := *inner
		cpy.Complement = inner.Complement != comp
		return c.compileNamedCharset(&cpy)
	case *ast.CharsetRange:
		cpy := *inner
		cpy.Complement = inner.Complement != comp
		return c.compileCharsetRange(&cpy)
	case *ast.CharsetList:
		cpy := *inner
		cpy.Complement = inner.Complement != comp
		return c.compileCharsetList(&cpy)
	default:
		p, err := c.compilePatternExp(inner, env)
		if err != nil {
			return nil, err
		}
		out := p.Peg
		if comp {
			out = complement(out)
		}
		return &Pattern{Peg: out, AST: exp}, nil
	}
}

func (c *Compiler) compileAtLeast(exp *ast.AtLeast, env *Env) (Value, error) {
	body, err := c.compileRepBody(exp.Exp, exp, env)
	if err != nil {
		return nil, err
	}
	p, err := peg.RepAtLeast(body, exp.Min)
	if err != nil {
		return nil, compileErrf(whoCompiler, exp, "peg compilation error: %s", err)
	}
	return &Pattern{Peg: p, AST: exp}, nil
}

func (c *Compiler) compileAtMost(exp *ast.AtMost, env *Env) (Value, error) {
	body, err := c.compileRepBody(exp.Exp, exp, env)
	if err != nil {
		return nil, err
	}
	p, err := peg.RepAtMost(body, exp.Max)
	if err != nil {
		return nil, compileErrf(whoCompiler, exp, "peg compilation error: %s", err)
	}
	return &Pattern{Peg: p, AST: exp}, nil
}

// compileRepBody compiles a repetition body and probes the back-end for
// bodies that can match the empty string, which are not repeatable.
func (c *Compiler) compileRepBody(body ast.Node, rep ast.Node, env *Env) (peg.Pattern, error) {
	p, err := c.compilePatternExp(body, env)
	if err != nil {
		return nil, err
	}
	if _, err := peg.RepAtLeast(p.Peg, 1); err != nil {
		if code, _ := peg.CodeOf(err); code == peg.EmptyLoopErr {
			return nil, compileErrf(whoExpression, rep, "pattern being repeated can match the empty string")
		}
		return nil, compileErrf(whoCompiler, rep, "peg compilation error: %s", err)
	}
	return p.Peg, nil
}

func (c *Compiler) compileRef(exp *ast.Ref, env *Env) (Value, error) {
	v, ok := env.Lookup(exp.Local, exp.Package)
	if !ok {
		return nil, c.unboundErr(exp, env)
	}
	switch v := v.(type) {
	case *Pattern:
		return &Pattern{
			Name:  exp.Local,
			Peg:   v.Peg,
			Uncap: v.Uncap,
			Alias: v.Alias,
			AST:   v.AST,
		}, nil
	case *Novalue:
		return nil, c.unboundErr(exp, env)
	default:
		return nil, compileErrf(whoExpression, exp, "type mismatch: expected a pattern, but '%s' is bound to %s", exp, v.Kind())
	}
}

func (c *Compiler) compileApplication(exp *ast.Application, env *Env) (Value, error) {
	v, ok := env.Lookup(exp.Ref.Local, exp.Ref.Package)
	if !ok {
		return nil, c.unboundErr(exp.Ref, env)
	}
	fn, ok := v.(*PrimFunction)
	if !ok {
		if _, isNovalue := v.(*Novalue); isNovalue {
			return nil, c.unboundErr(exp.Ref, env)
		}
		return nil, compileErrf(whoExpression, exp, "type mismatch: expected a function, but '%s' is bound to %s", exp.Ref, v.Kind())
	}

	if len(exp.Args) < fn.MinArgs || len(exp.Args) > fn.MaxArgs {
		return nil, compileErrf(whoExpression, exp, "error in function: '%s takes %d to %d arguments, got %d'",
			fn.Name, fn.MinArgs, fn.MaxArgs, len(exp.Args))
	}

	args := make([]Value, len(exp.Args))
	for i, arg := range exp.Args {
		compiled, err := c.compileExp(arg, env)
		if err != nil {
			return nil, err
		}
		args[i] = compiled
	}

	out, err := fn.Impl(args)
	if err != nil {
		return nil, compileErrf(whoExpression, exp, "error in function: '%s'", err)
	}
	return &Pattern{Name: exp.Ref.String(), Peg: out, AST: exp}, nil
}

// unboundErr builds an "unbound identifier" violation, with a "did you
// mean" hint when a near miss is visible in the environment.
func (c *Compiler) unboundErr(ref *ast.Ref, env *Env) *Violation {
	msg := "unbound identifier: " + ref.String()
	if len(ref.Local) > 2 {
		if close := levenshtein.ClosestStrings(2, ref.Local, env.Names()); len(close) > 0 {
			msg += " (did you mean '" + strings.Join(close, "', '") + "'?)"
		}
	}
	return compileErrf(whoExpression, ref, "%s", msg)
}

// wrapPattern applies the capture label for a binding site. An existing
// label is peeled off first: binding p1 = p2 captures as p1, not p2.
// Grammars are never passed here; they keep the capture compiled into
// their start rule.
func wrapPattern(p *Pattern, label string) {
	if p.Uncap != nil {
		p.Peg = peg.Capture(label, p.Uncap)
		return
	}
	p.Uncap = p.Peg
	p.Peg = peg.Capture(label, p.Peg)
}

// forceWrapPattern wraps unconditionally and leaves Uncap alone; used only
// for anonymous top-level wrapping, where even a grammar gets a label.
func forceWrapPattern(p *Pattern, label string) {
	inner := p.Peg
	if p.Uncap != nil {
		inner = p.Uncap
	}
	p.Peg = peg.Capture(label, inner)
}

// qualify joins the non-empty identifier parts with dots.
func qualify(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, ".")
}
