// Command corec compiles a serialized parse AST to a native binary and runs
// it: elaborate, lower to LLVM IR, assemble, link with clang, execute.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dshills/corec/internal/driver"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <source-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	sourcePath := flag.Arg(0)
	f, err := os.Open(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening %s: %v\n", sourcePath, err)
		os.Exit(1)
	}
	defer f.Close()

	d := driver.New()
	result, err := d.Run(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(result.ExitCode)
}
