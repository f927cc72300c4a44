// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package compile

import "github.com/rpl-lang/rpl/peg"

// localeCharsets maps POSIX class names to byte-range patterns with C
// locale semantics, matching the classes the surface language exposes.
var localeCharsets = map[string]peg.Pattern{
	"alpha":  ranges([][2]byte{{'A', 'Z'}, {'a', 'z'}}),
	"digit":  ranges([][2]byte{{'0', '9'}}),
	"alnum":  ranges([][2]byte{{'0', '9'}, {'A', 'Z'}, {'a', 'z'}}),
	"upper":  ranges([][2]byte{{'A', 'Z'}}),
	"lower":  ranges([][2]byte{{'a', 'z'}}),
	"punct":  ranges([][2]byte{{0x21, 0x2F}, {0x3A, 0x40}, {0x5B, 0x60}, {0x7B, 0x7E}}),
	"space":  ranges([][2]byte{{0x09, 0x0D}, {0x20, 0x20}}),
	"blank":  ranges([][2]byte{{0x09, 0x09}, {0x20, 0x20}}),
	"cntrl":  ranges([][2]byte{{0x00, 0x1F}, {0x7F, 0x7F}}),
	"graph":  ranges([][2]byte{{0x21, 0x7E}}),
	"print":  ranges([][2]byte{{0x20, 0x7E}}),
	"xdigit": ranges([][2]byte{{'0', '9'}, {'A', 'F'}, {'a', 'f'}}),
	"ascii":  ranges([][2]byte{{0x00, 0x7F}}),
	"word":   ranges([][2]byte{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}),
}

func ranges(rs [][2]byte) peg.Pattern {
	alts := make([]peg.Pattern, len(rs))
	for i, r := range rs {
		alts[i] = peg.ByteRange(r[0], r[1])
	}
	return peg.Choice(alts...)
}

// complement matches any single byte that p does not match.
func complement(p peg.Pattern) peg.Pattern {
	return peg.Seq(peg.Negation(p), peg.AnyByte())
}
