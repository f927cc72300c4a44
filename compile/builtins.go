// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package compile

import (
	"fmt"
	"strconv"

	"github.com/rpl-lang/rpl/peg"
	"github.com/rpl-lang/rpl/utf8range"
)

// NewStandardEnv returns the initial environment: the primitive functions
// available through application syntax. Named character classes are not
// bindings; they are reached through the [:name:] charset syntax.
func NewStandardEnv() *Env {
	env := NewEnv(nil)
	for _, fn := range builtinFunctions {
		env.Bind(fn.Name, fn)
	}
	return env
}

var builtinFunctions = []*PrimFunction{
	{
		Name:    "find",
		MinArgs: 1,
		MaxArgs: 1,
		Impl:    primFind,
	},
	{
		Name:    "keepto",
		MinArgs: 1,
		MaxArgs: 1,
		Impl:    primKeepto,
	},
	{
		Name:    "message",
		MinArgs: 1,
		MaxArgs: 2,
		Impl:    primMessage,
	},
	{
		Name:    "error",
		MinArgs: 1,
		MaxArgs: 1,
		Impl:    primError,
	},
	{
		Name:    "urange",
		MinArgs: 2,
		MaxArgs: 2,
		Impl:    primURange,
	},
}

// primFind skips input a byte at a time until its argument matches.
func primFind(args []Value) (peg.Pattern, error) {
	p, err := patternArg(args, 0)
	if err != nil {
		return nil, err
	}
	skip, err := peg.RepAtLeast(peg.Seq(peg.Negation(p.Peg), peg.AnyByte()), 0)
	if err != nil {
		return nil, err
	}
	return peg.Seq(skip, p.Peg), nil
}

// primKeepto is find with the skipped text captured.
func primKeepto(args []Value) (peg.Pattern, error) {
	p, err := patternArg(args, 0)
	if err != nil {
		return nil, err
	}
	skip, err := peg.RepAtLeast(peg.Seq(peg.Negation(p.Peg), peg.AnyByte()), 0)
	if err != nil {
		return nil, err
	}
	return peg.Seq(peg.Capture("keepto", skip), p.Peg), nil
}

// primMessage succeeds without consuming input and inserts a constant
// capture. The optional second argument is a hashtag naming the capture.
func primMessage(args []Value) (peg.Pattern, error) {
	text, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	label := "message"
	if len(args) == 2 {
		tag, ok := args[1].(*Hashtag)
		if !ok {
			return nil, fmt.Errorf("argument 2 must be a hashtag, not a %s", args[1].Kind())
		}
		label = tag.Value
	}
	return peg.Constant(label, text), nil
}

func primError(args []Value) (peg.Pattern, error) {
	text, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	return peg.Constant("error", text), nil
}

// primURange lowers a codepoint interval given as two numeric strings
// (decimal or 0x-prefixed hex).
func primURange(args []Value) (peg.Pattern, error) {
	lo, err := codepointArg(args, 0)
	if err != nil {
		return nil, err
	}
	hi, err := codepointArg(args, 1)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, fmt.Errorf("empty codepoint range %X..%X", lo, hi)
	}
	return utf8range.Compile(lo, hi)
}

func patternArg(args []Value, i int) (*Pattern, error) {
	p, ok := args[i].(*Pattern)
	if !ok {
		return nil, fmt.Errorf("argument %d must be a pattern, not a %s", i+1, args[i].Kind())
	}
	return p, nil
}

func stringArg(args []Value, i int) (string, error) {
	switch v := args[i].(type) {
	case *String:
		return v.Value, nil
	case *Hashtag:
		return v.Value, nil
	default:
		return "", fmt.Errorf("argument %d must be a string, not a %s", i+1, args[i].Kind())
	}
}

func codepointArg(args []Value, i int) (rune, error) {
	s, err := stringArg(args, i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil || n < 0 || n > utf8range.MaxCodepoint {
		return 0, fmt.Errorf("argument %d is not a codepoint: %q", i+1, s)
	}
	return rune(n), nil
}
