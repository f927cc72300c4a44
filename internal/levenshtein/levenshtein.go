// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package levenshtein

import (
	"iter"
	"slices"

	"github.com/agnivade/levenshtein"
)

// ClosestStrings returns the candidates closest to a, among those within
// minDistance edits, sorted lexicographically.
func ClosestStrings(minDistance int, a string, candidates iter.Seq[string]) []string {
	closestStrings := []string{}
	for c := range candidates {
		levDist := levenshtein.ComputeDistance(a, c)
		switch {
		case levDist < minDistance:
			closestStrings = []string{c}
			minDistance = levDist
		case levDist == minDistance:
			closestStrings = append(closestStrings, c)
		default:
			continue
		}
	}
	slices.Sort(closestStrings)
	return closestStrings
}
