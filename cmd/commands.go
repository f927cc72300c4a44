// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package cmd contains the CLI commands of the rpl binary.
package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/rpl-lang/rpl/logging"
)

// RootCommand is the base CLI command that all subcommands are added to.
var RootCommand = &cobra.Command{
	Use:   path.Base(os.Args[0]),
	Short: "rpl",
	Long:  "A compiler for the Rosie Pattern Language.",
}

var rootParams = struct {
	logLevel  string
	logFormat string
}{}

func init() {
	RootCommand.PersistentFlags().StringVar(&rootParams.logLevel, "log-level", "info", "set log level (debug, info, warn, error)")
	RootCommand.PersistentFlags().StringVar(&rootParams.logFormat, "log-format", "text", "set log format (text, json, json-pretty)")
}

// newLogger builds the logger configured by the persistent flags.
func newLogger() (*logging.StandardLogger, error) {
	level, err := logging.GetLevel(rootParams.logLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New()
	logger.SetLevel(level)
	logger.SetFormatter(logging.GetFormatter(rootParams.logFormat))
	return logger, nil
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(2)
}
