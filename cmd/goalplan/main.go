package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pablasso/goalplan/internal/cli"
	"github.com/pablasso/goalplan/internal/version"
)

func main() {
	// No args or only flags launch the TUI; otherwise route to the CLI.
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		if err := cli.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	res, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	switch {
	case res.ShowHelp:
		fmt.Print(res.HelpText)
		return
	case res.ShowVersion:
		fmt.Println(version.String())
		return
	}

	if err := cli.RunTUI(res.Options); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
