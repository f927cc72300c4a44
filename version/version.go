// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package version contains the compiler version.
package version

// Version is the canonical version of the rpl module.
var Version = "0.1.0-dev"
