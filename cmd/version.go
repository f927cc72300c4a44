// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rpl-lang/rpl/version"
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print the version of rpl",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Version: " + version.Version)
		fmt.Println("Go Version: " + runtime.Version())
		fmt.Println("Platform: " + runtime.GOOS + "/" + runtime.GOARCH)
	},
}

func init() {
	RootCommand.AddCommand(versionCommand)
}
