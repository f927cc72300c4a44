// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"encoding/json"
	"fmt"
)

// The parser serializes nodes as JSON objects tagged with a "type" field.
// This file decodes that form; it is the input path of the CLI.

// UnmarshalBlock decodes a serialized block.
func UnmarshalBlock(data []byte) (*Block, error) {
	n, err := UnmarshalNode(data)
	if err != nil {
		return nil, err
	}
	b, ok := n.(*Block)
	if !ok {
		return nil, fmt.Errorf("expected a block, got %T", n)
	}
	return b, nil
}

// UnmarshalNode decodes any serialized AST node.
func UnmarshalNode(data []byte) (Node, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env.decode()
}

type envelope struct {
	Type string `json:"type"`
	raw  json.RawMessage
}

func (e *envelope) UnmarshalJSON(data []byte) error {
	type head struct {
		Type string `json:"type"`
	}
	var h head
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	e.Type = h.Type
	e.raw = append(e.raw[:0], data...)
	return nil
}

func (e *envelope) decode() (Node, error) {
	switch e.Type {
	case "literal":
		var n Literal
		return &n, json.Unmarshal(e.raw, &n)
	case "string":
		var n String
		return &n, json.Unmarshal(e.raw, &n)
	case "hashtag":
		var n Hashtag
		return &n, json.Unmarshal(e.raw, &n)
	case "ref":
		var n Ref
		return &n, json.Unmarshal(e.raw, &n)
	case "sequence":
		var n struct {
			Exps []envelope `json:"exps"`
			Src  *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		exps, err := decodeList(n.Exps)
		if err != nil {
			return nil, err
		}
		return &Sequence{Exps: exps, Src: n.Src}, nil
	case "choice":
		var n struct {
			Exps []envelope `json:"exps"`
			Src  *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		exps, err := decodeList(n.Exps)
		if err != nil {
			return nil, err
		}
		return &Choice{Exps: exps, Src: n.Src}, nil
	case "predicate":
		var n struct {
			Kind string     `json:"kind"`
			Exp  envelope   `json:"exp"`
			Src  *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		exp, err := n.Exp.decode()
		if err != nil {
			return nil, err
		}
		var kind PredicateKind
		switch n.Kind {
		case "lookahead":
			kind = LookAhead
		case "lookbehind":
			kind = LookBehind
		case "negation":
			kind = Negation
		default:
			return nil, fmt.Errorf("unknown predicate kind %q", n.Kind)
		}
		return &Predicate{Kind: kind, Exp: exp, Src: n.Src}, nil
	case "cs_range":
		var n CharsetRange
		return &n, json.Unmarshal(e.raw, &n)
	case "cs_list":
		var n CharsetList
		return &n, json.Unmarshal(e.raw, &n)
	case "cs_named":
		var n NamedCharset
		return &n, json.Unmarshal(e.raw, &n)
	case "cs_exp":
		var n struct {
			CExp       envelope   `json:"cexp"`
			Complement bool       `json:"complement"`
			Src        *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		cexp, err := n.CExp.decode()
		if err != nil {
			return nil, err
		}
		return &CharsetExp{CExp: cexp, Complement: n.Complement, Src: n.Src}, nil
	case "cs_union", "cs_intersection", "cs_difference":
		var n struct {
			CExps []envelope `json:"cexps"`
			Src   *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		cexps, err := decodeList(n.CExps)
		if err != nil {
			return nil, err
		}
		switch e.Type {
		case "cs_union":
			return &CharsetUnion{CExps: cexps, Src: n.Src}, nil
		case "cs_intersection":
			return &CharsetIntersection{CExps: cexps, Src: n.Src}, nil
		default:
			return &CharsetDifference{CExps: cexps, Src: n.Src}, nil
		}
	case "atleast":
		var n struct {
			Min int        `json:"min"`
			Exp envelope   `json:"exp"`
			Src *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		exp, err := n.Exp.decode()
		if err != nil {
			return nil, err
		}
		return &AtLeast{Min: n.Min, Exp: exp, Src: n.Src}, nil
	case "atmost":
		var n struct {
			Max int        `json:"max"`
			Exp envelope   `json:"exp"`
			Src *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		exp, err := n.Exp.decode()
		if err != nil {
			return nil, err
		}
		return &AtMost{Max: n.Max, Exp: exp, Src: n.Src}, nil
	case "grammar":
		var n struct {
			Rules []envelope `json:"rules"`
			Src   *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		rules, err := decodeBindings(n.Rules)
		if err != nil {
			return nil, err
		}
		return &Grammar{Rules: rules, Src: n.Src}, nil
	case "application":
		var n struct {
			Ref  *Ref       `json:"ref"`
			Args []envelope `json:"arglist"`
			Src  *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		args, err := decodeList(n.Args)
		if err != nil {
			return nil, err
		}
		return &Application{Ref: n.Ref, Args: args, Src: n.Src}, nil
	case "binding":
		var n struct {
			Ref   *Ref       `json:"ref"`
			Exp   envelope   `json:"exp"`
			Alias bool       `json:"is_alias"`
			Local bool       `json:"is_local"`
			Src   *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		exp, err := n.Exp.decode()
		if err != nil {
			return nil, err
		}
		return &Binding{Ref: n.Ref, Exp: exp, Alias: n.Alias, Local: n.Local, Src: n.Src}, nil
	case "block":
		var n struct {
			Package string     `json:"package"`
			Imports []*Import  `json:"import_decls"`
			Stmts   []envelope `json:"stmts"`
			Src     *SourceRef `json:"sourceref"`
		}
		if err := json.Unmarshal(e.raw, &n); err != nil {
			return nil, err
		}
		stmts, err := decodeBindings(n.Stmts)
		if err != nil {
			return nil, err
		}
		return &Block{Package: n.Package, Imports: n.Imports, Stmts: stmts, Src: n.Src}, nil
	case "":
		return nil, fmt.Errorf("AST node missing \"type\" field")
	default:
		return nil, fmt.Errorf("unknown AST node type %q", e.Type)
	}
}

func decodeList(envs []envelope) ([]Node, error) {
	nodes := make([]Node, len(envs))
	for i := range envs {
		n, err := envs[i].decode()
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

func decodeBindings(envs []envelope) ([]*Binding, error) {
	bindings := make([]*Binding, len(envs))
	for i := range envs {
		n, err := envs[i].decode()
		if err != nil {
			return nil, err
		}
		b, ok := n.(*Binding)
		if !ok {
			return nil, fmt.Errorf("expected a binding, got %T", n)
		}
		bindings[i] = b
	}
	return bindings, nil
}
