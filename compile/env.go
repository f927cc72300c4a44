// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package compile

import (
	"iter"

	"github.com/cespare/xxhash/v2"

	"github.com/rpl-lang/rpl/ast"
	"github.com/rpl-lang/rpl/peg"
	"github.com/rpl-lang/rpl/util"
)

// Value is a binding in an environment: a compiled pattern, a string, a
// hashtag, a primitive function, or the Novalue placeholder.
type Value interface {
	// Kind names the binding kind as it appears in type mismatch
	// messages.
	Kind() string
}

// Pattern is a compiled pattern binding. Peg is the externally visible
// form; Uncap, when set, is the same expression without the outer capture
// wrapper. Patterns are immutable once bound.
type Pattern struct {
	Name     string
	Peg      peg.Pattern
	Uncap    peg.Pattern
	Alias    bool
	Exported bool
	AST      ast.Node
}

func (*Pattern) Kind() string { return "pattern" }

// String is a decoded string value, distinct from a pattern matching that
// string.
type String struct {
	Value string
}

func (*String) Kind() string { return "string" }

// Hashtag is an identifier-like tagged string value.
type Hashtag struct {
	Value string
}

func (*Hashtag) Kind() string { return "hashtag" }

// PrimFunction is a compiler-provided builtin usable through application
// syntax.
type PrimFunction struct {
	Name    string
	MinArgs int
	MaxArgs int
	Impl    func(args []Value) (peg.Pattern, error)
}

func (*PrimFunction) Kind() string { return "function" }

// Novalue marks a name whose right-hand side has not compiled
// (successfully) yet. It is observable only while its own block is being
// compiled.
type Novalue struct {
	Exported bool
	AST      ast.Node
}

func (*Novalue) Kind() string { return "undefined" }

// Env is a frame of the lexically scoped environment. Lookups proceed from
// the innermost frame outwards; package-qualified lookups resolve against
// imported package environments.
type Env struct {
	bindings *util.HashMap[string, Value]
	imports  map[string]*Env
	parent   *Env
}

// NewEnv returns an empty environment frame chained to parent (which may be
// nil).
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: util.NewHashMap[string, Value](
			func(a, b string) bool { return a == b },
			xxhash.Sum64String,
		),
		imports: map[string]*Env{},
		parent:  parent,
	}
}

// Extend pushes a new innermost frame.
func (e *Env) Extend() *Env {
	return NewEnv(e)
}

// Bind assigns local in the innermost frame, overwriting any existing
// binding there.
func (e *Env) Bind(local string, v Value) {
	e.bindings.Put(local, v)
}

// Lookup resolves an identifier. A non-empty pkg resolves against the
// imported package environments visible from this frame outwards;
// otherwise the frames themselves are searched innermost first.
func (e *Env) Lookup(local, pkg string) (Value, bool) {
	if pkg != "" {
		for env := e; env != nil; env = env.parent {
			if imported, ok := env.imports[pkg]; ok {
				return imported.Lookup(local, "")
			}
		}
		return nil, false
	}
	for env := e; env != nil; env = env.parent {
		if v, ok := env.bindings.Get(local); ok {
			return v, true
		}
	}
	return nil, false
}

// LookupLocal resolves local in this frame only.
func (e *Env) LookupLocal(local string) (Value, bool) {
	return e.bindings.Get(local)
}

// ImportPackage makes the bindings of pkgEnv visible under prefix.
func (e *Env) ImportPackage(prefix string, pkgEnv *Env) {
	e.imports[prefix] = pkgEnv
}

// Names yields every unqualified identifier bound in this frame and its
// parents, innermost frame first. Bindings of imported packages are not
// included. Used for "did you mean" suggestions.
func (e *Env) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for env := e; env != nil; env = env.parent {
			stop := env.bindings.Iter(func(k string, _ Value) bool {
				return !yield(k)
			})
			if stop {
				return
			}
		}
	}
}
