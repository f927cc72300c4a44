// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpl-lang/rpl/ast"
	"github.com/rpl-lang/rpl/compile"
	"github.com/rpl-lang/rpl/peg"
	"github.com/rpl-lang/rpl/util"
)

var matchCommand = &cobra.Command{
	Use:   "match <ast-file> <input>",
	Short: "Compile an expression and match it against input",
	Long: `Compile a parsed RPL expression and match it against the input string.

The expression is compiled as a top-level match expression: its result is
always captured, anonymously unless the expression is a reference to a
non-alias pattern. On a match the capture tree is printed as JSON.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := matchExpression(args[0], args[1]); err != nil {
			exitErr(err)
		}
	},
}

func init() {
	RootCommand.AddCommand(matchCommand)
}

func matchExpression(file, input string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	js, err := util.ToJSON(data)
	if err != nil {
		return err
	}
	exp, err := ast.UnmarshalNode(js)
	if err != nil {
		return err
	}

	compiler := compile.NewCompiler().WithLogger(logger)
	env := compile.NewStandardEnv().Extend()

	pat, err := compiler.CompileExpression(exp, env)
	if err != nil {
		return err
	}

	result := peg.MatchString(pat.Peg, input)
	if result == nil {
		fmt.Println("no match")
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result.Captures, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
