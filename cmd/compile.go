// Copyright 2026 The RPL Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rpl-lang/rpl/ast"
	"github.com/rpl-lang/rpl/compile"
	"github.com/rpl-lang/rpl/metrics"
	"github.com/rpl-lang/rpl/util"
)

var compileParams = struct {
	importPath  string
	prefix      string
	packageName string
	table       bool
	verbose     bool
}{}

var compileCommand = &cobra.Command{
	Use:   "compile <ast-file>",
	Short: "Compile a parsed RPL block",
	Long: `Compile a parsed RPL block into a fresh environment.

The input is the JSON (or YAML) form of the block produced by the RPL
parser and expander. Violations are printed to stdout; the command exits
non-zero if any of them are errors.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := compileBlock(args[0]); err != nil {
			exitErr(err)
		}
	},
}

func init() {
	compileCommand.Flags().StringVar(&compileParams.importPath, "import-path", "", "set the import path of the block")
	compileCommand.Flags().StringVar(&compileParams.prefix, "prefix", "", "set the capture label prefix (\".\" for none)")
	compileCommand.Flags().StringVar(&compileParams.packageName, "package", "", "override the package name of the block")
	compileCommand.Flags().BoolVar(&compileParams.table, "table", false, "print violations as a table")
	compileCommand.Flags().BoolVarP(&compileParams.verbose, "verbose", "v", false, "print compilation metrics")
	RootCommand.AddCommand(compileCommand)
}

func compileBlock(file string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	blk, err := loadBlock(file)
	if err != nil {
		return err
	}

	m := metrics.New()
	compiler := compile.NewCompiler().WithLogger(logger).WithMetrics(m)
	env := compile.NewStandardEnv().Extend()

	var req *compile.LoadRequest
	if compileParams.importPath != "" {
		req = &compile.LoadRequest{
			ImportPath:  compileParams.importPath,
			Prefix:      compileParams.prefix,
			PackageName: compileParams.packageName,
		}
	}

	pkg, ok := compiler.CompileBlock(blk, env, req)
	if pkg != "" {
		logger.Info("compiled package %s", pkg)
	}

	printViolations(compiler.Violations())
	if compileParams.verbose {
		fmt.Println(m)
	}
	if !ok {
		os.Exit(1)
	}
	return nil
}

func loadBlock(file string) (*ast.Block, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	js, err := util.ToJSON(data)
	if err != nil {
		return nil, err
	}
	return ast.UnmarshalBlock(js)
}

func printViolations(vs compile.Violations) {
	if len(vs) == 0 {
		return
	}
	if !compileParams.table {
		for _, v := range vs {
			fmt.Printf("%s (%s): %s\n", v.Kind, v.Who, v.Error())
		}
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Who", "Message"})
	for _, v := range vs {
		table.Append([]string{v.Kind.String(), v.Who, v.Message})
	}
	table.Render()
}
