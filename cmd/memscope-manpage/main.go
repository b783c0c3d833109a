package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/memscope/cmd/memscope"
	"github.com/arthur-debert/memscope/internal/version"
)

func main() {
	rootCmd := memscope.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "MEMSCOPE",
		Section: "1",
		Source:  "memscope " + version.Version,
		Manual:  "memscope manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
