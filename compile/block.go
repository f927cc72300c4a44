// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package compile

import (
	"github.com/rpl-lang/rpl/ast"
	"github.com/rpl-lang/rpl/metrics"
)

// LoadRequest describes how a block is being loaded. ImportPath is set
// when the block was loaded as a module; Prefix overrides the package name
// as the capture label prefix, and the special prefix "." suppresses
// prefixing entirely.
type LoadRequest struct {
	ImportPath  string
	Prefix      string
	PackageName string
}

// effectivePrefix computes the prefix attached to capture labels: the
// request's prefix or its package name, only when an import path is
// present and the prefix is not ".".
func (r *LoadRequest) effectivePrefix() string {
	if r == nil || r.ImportPath == "" || r.Prefix == "." {
		return ""
	}
	if r.Prefix != "" {
		return r.Prefix
	}
	return r.PackageName
}

// CompileBlock compiles the top-level bindings of blk into env. Import
// declarations have been satisfied by the module loader and are skipped.
//
// Compilation is two passes: every binding's name is first bound to
// Novalue, then each right-hand side is compiled in source order. A
// binding that fails to compile is recorded as a violation and left as
// Novalue; compilation continues with the next binding, so the returned
// package name is valid even when ok is false.
//
// Out-of-order top-level bindings are not resolved yet: a forward
// reference outside a grammar fails as unbound. An iterated pass 2 that
// fixpoints over still-Novalue dependencies would lift that restriction.
// TODO: iterate pass 2 until no binding waits on a Novalue sibling.
func (c *Compiler) CompileBlock(blk *ast.Block, env *Env, req *LoadRequest) (string, bool) {
	c.prefix = req.effectivePrefix()
	defer func() { c.prefix = "" }()

	for _, imp := range blk.Imports {
		c.logger.Debug("skipping import declaration %s (satisfied by loader)", imp.Path)
	}

	// Pass 1: forward placeholders.
	bind := c.metrics.Timer(metrics.BlockBind)
	bind.Start()
	for _, stmt := range blk.Stmts {
		local := stmt.Ref.Local
		if _, bound := env.LookupLocal(local); bound {
			c.report(newViolation(InfoNote, whoBlock, "rebinding identifier: "+local, stmt))
		}
		env.Bind(local, &Novalue{Exported: !stmt.Local, AST: stmt})
	}
	bind.Stop()

	// Pass 2: compile in source order.
	compileTimer := c.metrics.Timer(metrics.BlockCompile)
	compileTimer.Start()
	ok := true
	for _, stmt := range blk.Stmts {
		if !c.compileStatement(stmt, env) {
			ok = false
		}
	}
	compileTimer.Stop()

	return blk.Package, ok
}

func (c *Compiler) compileStatement(stmt *ast.Binding, env *Env) bool {
	local := stmt.Ref.Local
	c.logger.Debug("compiling binding %s", local)

	v, err := c.compileExp(stmt.Exp, env)
	if err != nil {
		// The identifier stays bound to its Novalue.
		c.report(err.(*Violation))
		return false
	}

	switch v := v.(type) {
	case *Pattern:
		_, isGrammar := stmt.Exp.(*ast.Grammar)
		if !stmt.Alias && !isGrammar {
			wrapPattern(v, qualify(c.prefix, local))
		}
		v.Name = local
		v.Alias = stmt.Alias
		v.Exported = !stmt.Local
		v.AST = stmt
		env.Bind(local, v)
	default:
		// Strings and hashtags bind as plain values.
		env.Bind(local, v)
	}
	return true
}
