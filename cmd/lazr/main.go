package main

import (
	"fmt"
	"os"
	"strings"

	"lazr/interpreter-go/pkg/driver"
	"lazr/interpreter-go/pkg/interpreter"
)

const cliToolVersion = "lazr 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "test":
		return runTests(args[1:])
	case "fixtures":
		return runFixtures(args[1:])
	default:
		return runEntry(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lazr run <program.yml>")
	fmt.Fprintln(os.Stderr, "  lazr <program.yml>")
	fmt.Fprintln(os.Stderr, "  lazr test [--verbose] [dir ...]")
	fmt.Fprintln(os.Stderr, "  lazr fixtures fetch <git-url> [--rev <revision>] [--name <name>]")
	fmt.Fprintln(os.Stderr, "  lazr version")
}

// runEntry evaluates one program file, echoing visible top-level results.
func runEntry(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "lazr run requires a program file")
		return 1
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	cfg, err := driver.ResolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	program, err := interpreter.DecodeProgramFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
		return 1
	}

	interp := interpreter.NewWithOptions(interpreter.Options{
		Config: cfg,
		Stdout: os.Stdout,
		Echo:   true,
	})
	if _, err := interp.Execute(program); err != nil {
		fmt.Fprintln(os.Stderr, interpreter.DescribeDiagnostic(interp.BuildDiagnostic(err)))
		return 1
	}
	return 0
}
