// Package repl SPDX-License-Identifier: Apache-2.0

// Package repl implements a small interactive command loop over a fixed
// catalog of pre-built terms: "list" to see them, "show <name>" to print
// one through the fold/simplify/translate pipeline, "quit" to exit.
// Parsing term syntax from typed input is out of scope, so the REPL
// selects among terms built in Go rather than reading expressions.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"bvterm/internal/fold"
	"bvterm/internal/query"
	"bvterm/internal/simplify"
	"bvterm/internal/smtlib"
	"bvterm/internal/term"
)

const prompt = ">> "

// Example names one term in the REPL's catalog.
type Example struct {
	Name string
	Expr term.Expression
}

func Start(in io.Reader, catalog []Example) {
	scanner := bufio.NewScanner(in)

	fmt.Println("bvterm repl — commands: list, show <name>, quit")
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return
		case line == "list":
			for _, ex := range catalog {
				fmt.Println(" ", ex.Name)
			}
		case strings.HasPrefix(line, "show "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "show "))
			show(catalog, name)
		default:
			fmt.Println("unknown command; try: list, show <name>, quit")
		}
	}
}

func show(catalog []Example, name string) {
	for _, ex := range catalog {
		if ex.Name != name {
			continue
		}
		fmt.Printf("original:   %s\n", smtlib.TranslateSMTLIB(ex.Expr, smtlib.Options{}))
		folded := fold.New().Fold(ex.Expr)
		fmt.Printf("folded:     %s\n", smtlib.TranslateSMTLIB(folded, smtlib.Options{}))
		simplified := simplify.New().Simplify(ex.Expr)
		fmt.Printf("simplified: %s\n", smtlib.TranslateSMTLIB(simplified, smtlib.Options{UseLetBindings: true}))
		fmt.Printf("depth: %d, free variables: %d\n", query.GetDepth(ex.Expr), len(query.GetVariables(ex.Expr)))
		return
	}
	fmt.Printf("no such example: %q (try \"list\")\n", name)
}
