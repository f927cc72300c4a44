// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package compile

import (
	"github.com/rpl-lang/rpl/ast"
	"github.com/rpl-lang/rpl/metrics"
	"github.com/rpl-lang/rpl/peg"
)

// compileGrammar compiles a mutually recursive rule group in three passes:
// bind every rule name to a placeholder referring into the grammar, compile
// the rule bodies against those placeholders, then assemble the fixpoint.
// The first rule is the start rule, and its name becomes the grammar's
// name.
func (c *Compiler) compileGrammar(g *ast.Grammar, env *Env) (Value, error) {
	timer := c.metrics.Timer(metrics.GrammarCompile)
	timer.Start()
	defer timer.Stop()

	if len(g.Rules) == 0 {
		return nil, compileErrf(whoCompiler, g, "invalid expression: empty grammar")
	}
	grammarID := g.Rules[0].Ref.Local

	// Pass 1: extend the environment and bind each rule name to a
	// placeholder whose pattern is a rule reference. Capture labels are
	// computed now: the start rule is labeled like a top-level binding,
	// the others are qualified by the grammar name.
	genv := env.Extend()
	labels := make([]string, len(g.Rules))
	for i, rule := range g.Rules {
		id := rule.Ref.Local
		if id == grammarID {
			labels[i] = qualify(c.prefix, id)
		} else {
			labels[i] = qualify(c.prefix, grammarID, id)
		}
		genv.Bind(id, &Pattern{
			Name:  id,
			Peg:   peg.V(id),
			Alias: rule.Alias,
			AST:   rule,
		})
	}

	// Pass 2: compile the rule bodies in source order. Non-alias rules
	// are wrapped with the label computed in pass 1.
	rules := make(map[string]peg.Pattern, len(g.Rules))
	for i, rule := range g.Rules {
		c.logger.Debug("compiling grammar rule %s.%s", grammarID, rule.Ref.Local)
		body, err := c.compilePatternExp(rule.Exp, genv)
		if err != nil {
			return nil, err
		}
		if !rule.Alias {
			wrapPattern(body, labels[i])
		}
		rules[rule.Ref.Local] = body.Peg
	}

	// Pass 3: link. Left recursion is reported in the back-end's own
	// words; anything else unexpected comes out as a generic peg
	// compilation error.
	fixed, err := peg.NewGrammar(rules, grammarID)
	if err != nil {
		if code, _ := peg.CodeOf(err); code == peg.LeftRecursionErr {
			return nil, compileErrf(whoGrammar, g, "%s", err)
		}
		return nil, compileErrf(whoGrammar, g, "peg compilation error: %s", err)
	}

	// Grammars carry no Uncap: the capture sits inside the start rule and
	// is never re-wrapped at a binding site.
	return &Pattern{
		Name: grammarID,
		Peg:  fixed,
		AST:  g,
	}, nil
}
