// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"blockmerge/internal/ir"
	"blockmerge/internal/irtext"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: blockmerge-cli <fixture.ir>")
		os.Exit(1)
	}
	path := os.Args[1]

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	program, err := irtext.ParseProgram(path, string(source))
	if err != nil {
		color.Red("❌ %s", err)
		os.Exit(1)
	}

	fmt.Println("before:")
	fmt.Print(ir.PrintProgram(program))

	pipeline := ir.NewOptimizationPipeline()
	changed := pipeline.Run(program)

	fmt.Println("after:")
	fmt.Print(ir.PrintProgram(program))

	if changed {
		color.Green("✅ %s: block-merge optimized the program (%d function(s) processed)", path, len(program.Functions))
	} else {
		color.Yellow("— %s: no change", path)
	}
}
