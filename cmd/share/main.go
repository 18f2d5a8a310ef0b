package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dacapoday/share/internal/cli"
)

const (
	cmdName = "share"

	shortDesc = "Exercise shared ownership and concurrency primitives."
	longDesc  = `Run small scenarios over the share primitives.

tree      builds a parent/children tree of counted nodes, drops the root and
          checks every node is finalized exactly once.
counter   increments a poisoning mutex shared through atomic counted handles.
pipeline  sends from many cloned senders into one receiver and checks
          per-sender ordering.
`
)

func main() {
	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
