package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bsv-blockchain/fractionalize/cmd/fractionalize"
	"github.com/urfave/cli/v2"
)

// Name used by build script for the binaries. (Please keep on single line)
const progname = "fractionalize"

// Version & commit strings injected at build with -ldflags -X...
var version string
var commit string

func main() {
	if err := fractionalize.Run(progname, version, commit, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}

		os.Exit(1)
	}
}
