// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"bvterm/internal/fold"
	"bvterm/internal/query"
	"bvterm/internal/rwerrors"
	"bvterm/internal/simplify"
	"bvterm/internal/smtlib"
	"bvterm/internal/term"
	"bvterm/repl"
)

func main() {
	defer func() {
		if err := rwerrors.Recover(); err != nil {
			color.Red("fault: %s", err)
			os.Exit(1)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "repl" {
		repl.Start(os.Stdin, demoTerms())
		return
	}

	runDemo()
}

// runDemo builds a small catalog of terms and pushes each through
// fold -> simplify -> translate, printing before/after SMT-LIB so the
// rewrite pipeline is visible end to end without a file to parse: term
// construction from source text is out of scope (see the constructors in
// package term), so this entrypoint builds terms programmatically.
func runDemo() {
	for _, ex := range demoTerms() {
		fmt.Println(ex.Name)
		showPipeline(ex.Expr)
		fmt.Println()
	}
	color.Green("done")
}

func showPipeline(x term.Expression) {
	before := smtlib.TranslateSMTLIB(x, smtlib.Options{})
	fmt.Printf("  before:   %s\n", before)

	folded := fold.New().Fold(x)
	fmt.Printf("  folded:   %s\n", smtlib.TranslateSMTLIB(folded, smtlib.Options{}))

	simplified := simplify.New().Simplify(x)
	fmt.Printf("  simplified: %s\n", smtlib.TranslateSMTLIB(simplified, smtlib.Options{UseLetBindings: true}))

	fmt.Printf("  depth: %d  free vars: %d\n", query.GetDepth(x), len(query.GetVariables(x)))

	if val, ok := query.ToConstant(x); ok {
		fmt.Printf("  constant value: %v\n", val)
	}

	if _, err := smtlib.ParseSExpr(before); err != nil {
		var perr participle.Error
		if ok := asParticipleError(err, &perr); ok {
			color.Yellow("  round-trip parse warning at %s: %s", perr.Position(), perr.Message())
		}
	}
}

func asParticipleError(err error, out *participle.Error) bool {
	pe, ok := err.(participle.Error)
	if !ok {
		return false
	}
	*out = pe
	return true
}
