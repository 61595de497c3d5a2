// Command insight runs the upload pipeline on local files: inspect a CSV,
// draw its default chart, print the analysis, or export it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
