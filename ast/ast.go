// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package ast defines the RPL abstract syntax tree consumed by the
// compiler. The surface parser and the macro expander produce these nodes;
// the compiler depends only on the node shapes defined here.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is implemented by every AST node.
type Node interface {
	fmt.Stringer
	Loc() *SourceRef
}

// SourceRef points at the source text a node was parsed from. Parent links
// chains of references through macro expansion.
type SourceRef struct {
	Text   string     `json:"text,omitempty"`
	Start  int        `json:"s"`
	End    int        `json:"e"`
	Origin string     `json:"origin,omitempty"`
	Parent *SourceRef `json:"parent,omitempty"`
}

func (s *SourceRef) String() string {
	if s == nil {
		return ""
	}
	if s.Origin != "" {
		return fmt.Sprintf("%s:%d", s.Origin, s.Start)
	}
	return strconv.Itoa(s.Start)
}

// Ref is a possibly package-qualified identifier.
type Ref struct {
	Package string     `json:"package,omitempty"`
	Local   string     `json:"localname"`
	Src     *SourceRef `json:"sourceref,omitempty"`
}

func (r *Ref) Loc() *SourceRef { return r.Src }

func (r *Ref) String() string {
	if r.Package != "" {
		return r.Package + "." + r.Local
	}
	return r.Local
}

// Binding is one statement `name = exp`, either at the top level of a block
// or as a grammar rule.
type Binding struct {
	Ref   *Ref       `json:"ref"`
	Exp   Node       `json:"exp"`
	Alias bool       `json:"is_alias"`
	Local bool       `json:"is_local"`
	Src   *SourceRef `json:"sourceref,omitempty"`
}

func (b *Binding) Loc() *SourceRef { return b.Src }

func (b *Binding) String() string {
	var sb strings.Builder
	if b.Local {
		sb.WriteString("local ")
	}
	if b.Alias {
		sb.WriteString("alias ")
	}
	sb.WriteString(b.Ref.String())
	sb.WriteString(" = ")
	sb.WriteString(b.Exp.String())
	return sb.String()
}

// Literal is a pattern matching its (escaped) text.
type Literal struct {
	Value string     `json:"value"`
	Src   *SourceRef `json:"sourceref,omitempty"`
}

func (l *Literal) Loc() *SourceRef { return l.Src }
func (l *Literal) String() string  { return strconv.Quote(l.Value) }

// String is a string-valued expression, distinct from a pattern matching
// that string. It occurs as an argument to a function application or as
// the right-hand side of a binding, which then binds a string value.
type String struct {
	Value string     `json:"value"`
	Src   *SourceRef `json:"sourceref,omitempty"`
}

func (s *String) Loc() *SourceRef { return s.Src }
func (s *String) String() string  { return strconv.Quote(s.Value) }

// Hashtag is an identifier-like tagged string, e.g. #word.
type Hashtag struct {
	Value string     `json:"value"`
	Src   *SourceRef `json:"sourceref,omitempty"`
}

func (h *Hashtag) Loc() *SourceRef { return h.Src }
func (h *Hashtag) String() string  { return "#" + h.Value }

// Sequence matches its subexpressions in order.
type Sequence struct {
	Exps []Node     `json:"exps"`
	Src  *SourceRef `json:"sourceref,omitempty"`
}

func (s *Sequence) Loc() *SourceRef { return s.Src }

func (s *Sequence) String() string {
	parts := make([]string, len(s.Exps))
	for i, e := range s.Exps {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Choice is ordered choice over its subexpressions.
type Choice struct {
	Exps []Node     `json:"exps"`
	Src  *SourceRef `json:"sourceref,omitempty"`
}

func (c *Choice) Loc() *SourceRef { return c.Src }

func (c *Choice) String() string {
	parts := make([]string, len(c.Exps))
	for i, e := range c.Exps {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, " / ") + "}"
}

// PredicateKind selects the predicate operator.
type PredicateKind int

const (
	LookAhead PredicateKind = iota
	LookBehind
	Negation
)

func (k PredicateKind) String() string {
	switch k {
	case LookAhead:
		return ">"
	case LookBehind:
		return "<"
	case Negation:
		return "!"
	}
	return "?"
}

// Predicate applies a zero-width assertion to its subexpression.
type Predicate struct {
	Kind PredicateKind `json:"kind"`
	Exp  Node          `json:"exp"`
	Src  *SourceRef    `json:"sourceref,omitempty"`
}

func (p *Predicate) Loc() *SourceRef { return p.Src }
func (p *Predicate) String() string  { return p.Kind.String() + p.Exp.String() }

// CharsetRange matches one byte in [First,Last].
type CharsetRange struct {
	First      string     `json:"first"`
	Last       string     `json:"last"`
	Complement bool       `json:"complement"`
	Src        *SourceRef `json:"sourceref,omitempty"`
}

func (c *CharsetRange) Loc() *SourceRef { return c.Src }

func (c *CharsetRange) String() string {
	return "[" + complementMark(c.Complement) + c.First + "-" + c.Last + "]"
}

// CharsetList matches any one of its characters.
type CharsetList struct {
	Chars      []string   `json:"chars"`
	Complement bool       `json:"complement"`
	Src        *SourceRef `json:"sourceref,omitempty"`
}

func (c *CharsetList) Loc() *SourceRef { return c.Src }

func (c *CharsetList) String() string {
	return "[" + complementMark(c.Complement) + strings.Join(c.Chars, "") + "]"
}

// NamedCharset refers to a locale character class, e.g. [:alpha:].
type NamedCharset struct {
	Name       string     `json:"name"`
	Complement bool       `json:"complement"`
	Src        *SourceRef `json:"sourceref,omitempty"`
}

func (c *NamedCharset) Loc() *SourceRef { return c.Src }

func (c *NamedCharset) String() string {
	return "[:" + complementMark(c.Complement) + c.Name + ":]"
}

// CharsetExp wraps a charset-valued expression, possibly complemented.
type CharsetExp struct {
	CExp       Node       `json:"cexp"`
	Complement bool       `json:"complement"`
	Src        *SourceRef `json:"sourceref,omitempty"`
}

func (c *CharsetExp) Loc() *SourceRef { return c.Src }

func (c *CharsetExp) String() string {
	return "[" + complementMark(c.Complement) + c.CExp.String() + "]"
}

// CharsetUnion is the union of its charset subexpressions.
type CharsetUnion struct {
	CExps []Node     `json:"cexps"`
	Src   *SourceRef `json:"sourceref,omitempty"`
}

func (c *CharsetUnion) Loc() *SourceRef { return c.Src }

func (c *CharsetUnion) String() string {
	parts := make([]string, len(c.CExps))
	for i, e := range c.CExps {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// CharsetIntersection is unimplemented in the language; the compiler
// reports it as an error.
type CharsetIntersection struct {
	CExps []Node     `json:"cexps"`
	Src   *SourceRef `json:"sourceref,omitempty"`
}

func (c *CharsetIntersection) Loc() *SourceRef { return c.Src }

func (c *CharsetIntersection) String() string {
	parts := make([]string, len(c.CExps))
	for i, e := range c.CExps {
		parts[i] = e.String()
	}
	return strings.Join(parts, " & ")
}

// CharsetDifference is unimplemented in the language; the compiler reports
// it as an error.
type CharsetDifference struct {
	CExps []Node     `json:"cexps"`
	Src   *SourceRef `json:"sourceref,omitempty"`
}

func (c *CharsetDifference) Loc() *SourceRef { return c.Src }

func (c *CharsetDifference) String() string {
	parts := make([]string, len(c.CExps))
	for i, e := range c.CExps {
		parts[i] = e.String()
	}
	return strings.Join(parts, " - ")
}

// AtLeast matches Exp at least Min times.
type AtLeast struct {
	Min int        `json:"min"`
	Exp Node       `json:"exp"`
	Src *SourceRef `json:"sourceref,omitempty"`
}

func (a *AtLeast) Loc() *SourceRef { return a.Src }

func (a *AtLeast) String() string {
	switch a.Min {
	case 0:
		return a.Exp.String() + "*"
	case 1:
		return a.Exp.String() + "+"
	}
	return fmt.Sprintf("%s{%d,}", a.Exp.String(), a.Min)
}

// AtMost matches Exp at most Max times.
type AtMost struct {
	Max int        `json:"max"`
	Exp Node       `json:"exp"`
	Src *SourceRef `json:"sourceref,omitempty"`
}

func (a *AtMost) Loc() *SourceRef { return a.Src }

func (a *AtMost) String() string {
	if a.Max == 1 {
		return a.Exp.String() + "?"
	}
	return fmt.Sprintf("%s{,%d}", a.Exp.String(), a.Max)
}

// Grammar is an ordered group of mutually recursive rules. The first rule
// is the start rule and names the grammar.
type Grammar struct {
	Rules []*Binding `json:"rules"`
	Src   *SourceRef `json:"sourceref,omitempty"`
}

func (g *Grammar) Loc() *SourceRef { return g.Src }

func (g *Grammar) String() string {
	var sb strings.Builder
	sb.WriteString("grammar")
	for _, r := range g.Rules {
		sb.WriteString("\n   ")
		sb.WriteString(r.String())
	}
	sb.WriteString("\nend")
	return sb.String()
}

// Application applies a function binding to argument expressions.
type Application struct {
	Ref  *Ref       `json:"ref"`
	Args []Node     `json:"arglist"`
	Src  *SourceRef `json:"sourceref,omitempty"`
}

func (a *Application) Loc() *SourceRef { return a.Src }

func (a *Application) String() string {
	parts := make([]string, len(a.Args))
	for i, e := range a.Args {
		parts[i] = e.String()
	}
	return a.Ref.String() + ":(" + strings.Join(parts, ", ") + ")"
}

// Import records an import declaration. Imports are satisfied by the module
// loader before compilation; the compiler treats them as markers.
type Import struct {
	Path  string     `json:"importpath"`
	Alias string     `json:"prefix,omitempty"`
	Src   *SourceRef `json:"sourceref,omitempty"`
}

func (i *Import) Loc() *SourceRef { return i.Src }

func (i *Import) String() string {
	if i.Alias != "" {
		return "import " + i.Path + " as " + i.Alias
	}
	return "import " + i.Path
}

// Block is a compilation unit: an optional package declaration, imports,
// and a sequence of top-level bindings.
type Block struct {
	Package string     `json:"package,omitempty"`
	Imports []*Import  `json:"import_decls,omitempty"`
	Stmts   []*Binding `json:"stmts"`
	Src     *SourceRef `json:"sourceref,omitempty"`
}

func (b *Block) Loc() *SourceRef { return b.Src }

func (b *Block) String() string {
	var lines []string
	if b.Package != "" {
		lines = append(lines, "package "+b.Package)
	}
	for _, imp := range b.Imports {
		lines = append(lines, imp.String())
	}
	for _, s := range b.Stmts {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}

func complementMark(c bool) string {
	if c {
		return "^"
	}
	return ""
}
