// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package util

import (
	"bytes"

	"sigs.k8s.io/yaml"
)

// ToJSON returns the input as JSON bytes, converting from YAML if needed.
// Inputs that already look like JSON pass through untouched.
func ToJSON(bs []byte) ([]byte, error) {
	if looksLikeJSON(bs) {
		return bs, nil
	}
	return yaml.YAMLToJSON(bs)
}

func looksLikeJSON(bs []byte) bool {
	trimmed := bytes.TrimLeftFunc(bs, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
