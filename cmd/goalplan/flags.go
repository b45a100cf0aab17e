package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/pablasso/goalplan/internal/cli"
)

type parseResult struct {
	Options     cli.TUIOptions
	ShowHelp    bool
	ShowVersion bool
	HelpText    string
}

func parseArgs(args []string) (parseResult, error) {
	fs := flag.NewFlagSet("goalplan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	configPath := fs.String("config", "", "Path to config file (default ~/.goalplan/config.yaml)")
	demo := fs.Bool("demo", false, "Use built-in demo data instead of an AI provider")
	showVersion := fs.Bool("version", false, "Show version information")
	showVersionShort := fs.Bool("v", false, "Show version information")

	usage := func() string {
		var b strings.Builder
		fmt.Fprintln(&b, "Usage: goalplan [flags]")
		fmt.Fprintln(&b, "       goalplan <command> [args]")
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, "Goalplan turns a goal into a dated, ordered task plan.")
		fmt.Fprintln(&b, "Without a command it opens the interactive planner.")
		fmt.Fprintln(&b, "Run 'goalplan help' for the list of commands.")
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, "Flags:")
		fs.SetOutput(&b)
		fs.PrintDefaults()
		fs.SetOutput(io.Discard)
		return b.String()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return parseResult{ShowHelp: true, HelpText: usage()}, nil
		}
		return parseResult{}, fmt.Errorf("%v\n\n%s", err, usage())
	}

	if fs.NArg() > 0 {
		return parseResult{}, fmt.Errorf("commands must come before flags, e.g. goalplan %s --config <path>\n\n%s", fs.Arg(0), usage())
	}

	if *showVersion || *showVersionShort {
		return parseResult{ShowVersion: true}, nil
	}

	return parseResult{
		Options: cli.TUIOptions{
			ConfigPath: *configPath,
			Demo:       *demo,
		},
	}, nil
}
