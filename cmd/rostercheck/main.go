// Package main provides the rostercheck utility: it lints a roster CSV
// ahead of a live event, reporting rows the server would skip and
// entries whose numbers collide or overflow the configured board width.
package main

import (
	"flag"
	"fmt"
	"os"

	"luckydraw/internal/draw/roster"
)

func main() {
	digitCount := flag.Int("digits", 4, "board digit count to lint against")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: rostercheck [-digits N] roster.csv\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *digitCount < 1 {
		fmt.Fprintln(os.Stderr, "rostercheck: -digits must be at least 1")
		os.Exit(2)
	}

	entries, warnings, err := roster.LoadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "rostercheck: %v\n", err)
		os.Exit(1)
	}
	warnings = append(warnings, roster.Lint(entries, *digitCount)...)

	fmt.Printf("%d entries parsed\n", len(entries))
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if len(warnings) > 0 {
		fmt.Printf("%d warning(s)\n", len(warnings))
		os.Exit(1)
	}
	fmt.Println("roster is clean")
}
