// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package compile

import (
	"fmt"
	"strings"

	"github.com/rpl-lang/rpl/ast"
)

// Kind classifies a violation.
type Kind int

const (
	// CompileErr indicates a compile error.
	CompileErr Kind = iota

	// SyntaxErr indicates a parse error surfaced through the compiler.
	SyntaxErr

	// InfoNote is an informational message, e.g. a rebinding note.
	InfoNote

	// WarningNote is a warning.
	WarningNote
)

func (k Kind) String() string {
	switch k {
	case CompileErr:
		return "compile"
	case SyntaxErr:
		return "syntax"
	case InfoNote:
		return "info"
	case WarningNote:
		return "warning"
	}
	return "unknown"
}

// Violation is a single diagnostic produced during compilation. Violations
// are collected rather than raised so that one failed binding does not
// abort the rest of a block.
type Violation struct {
	Kind      Kind           `json:"kind"`
	Who       string         `json:"who"`
	Message   string         `json:"message"`
	AST       ast.Node       `json:"-"`
	SourceRef *ast.SourceRef `json:"sourceref,omitempty"`
}

func (v *Violation) Error() string {
	if v.SourceRef != nil {
		return fmt.Sprintf("%s: %s", v.SourceRef, v.Message)
	}
	return v.Message
}

// IsErr reports whether the violation prevents use of its binding.
func (v *Violation) IsErr() bool {
	return v.Kind == CompileErr || v.Kind == SyntaxErr
}

// Violations is a series of violations encountered during compilation.
type Violations []*Violation

func (vs Violations) Error() string {
	if len(vs) == 0 {
		return "no error(s)"
	}
	if len(vs) == 1 {
		return fmt.Sprintf("1 error occurred: %v", vs[0].Error())
	}
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = v.Error()
	}
	return fmt.Sprintf("%d errors occurred:\n%s", len(vs), strings.Join(s, "\n"))
}

// HasErrors reports whether any violation is an error (as opposed to an
// info or warning note).
func (vs Violations) HasErrors() bool {
	for _, v := range vs {
		if v.IsErr() {
			return true
		}
	}
	return false
}

func newViolation(kind Kind, who, msg string, node ast.Node) *Violation {
	v := &Violation{Kind: kind, Who: who, Message: msg, AST: node}
	if node != nil {
		v.SourceRef = node.Loc()
	}
	return v
}

func compileErrf(who string, node ast.Node, f string, a ...any) *Violation {
	return newViolation(CompileErr, who, fmt.Sprintf(f, a...), node)
}
