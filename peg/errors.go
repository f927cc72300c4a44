// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package peg

import "errors"

// ErrorCode classifies pattern construction failures so that callers can
// dispatch on the kind of failure instead of parsing message text.
type ErrorCode int

const (
	// EmptyLoopErr indicates a repetition whose body can match empty.
	EmptyLoopErr ErrorCode = iota

	// NotFixedLenErr indicates a lookbehind body of variable length.
	NotFixedLenErr

	// TooLongErr indicates a lookbehind body longer than 255 bytes.
	TooLongErr

	// HasCapturesErr indicates a lookbehind body containing captures.
	HasCapturesErr

	// UndefinedRuleErr indicates a V reference to a rule that does not
	// exist in the grammar.
	UndefinedRuleErr

	// LeftRecursionErr indicates a rule that can re-enter itself without
	// consuming input.
	LeftRecursionErr
)

// Error is a structured pattern construction error.
type Error struct {
	Code    ErrorCode
	Rule    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// CodeOf returns the error code of err if it is a pattern construction
// error.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
