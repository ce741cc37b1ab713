package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"lazr/interpreter-go/pkg/driver"
	"lazr/interpreter-go/pkg/interpreter"
)

type testCliConfig struct {
	Targets []string
	Verbose bool
}

func parseTestArguments(args []string) (testCliConfig, error) {
	var cfg testCliConfig
	for _, arg := range args {
		switch {
		case arg == "--verbose" || arg == "-v":
			cfg.Verbose = true
		case strings.HasPrefix(arg, "-"):
			return cfg, fmt.Errorf("unknown flag %s", arg)
		default:
			cfg.Targets = append(cfg.Targets, arg)
		}
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = []string{"."}
	}
	return cfg, nil
}

// runTests replays every fixture found under the targets.
func runTests(args []string) int {
	cfg, err := parseTestArguments(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lazr test: %v\n", err)
		return 1
	}

	var dirs []string
	for _, target := range cfg.Targets {
		found, err := driver.DiscoverFixtures(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lazr test: %v\n", err)
			return 1
		}
		dirs = append(dirs, found...)
	}
	if len(dirs) == 0 {
		fmt.Fprintf(os.Stderr, "lazr test: no %s found under %s\n", driver.FixtureFile, strings.Join(cfg.Targets, ", "))
		return 1
	}

	failed := 0
	for _, dir := range dirs {
		if !reportFixture(os.Stdout, dir, cfg.Verbose) {
			failed++
		}
	}
	fmt.Fprintf(os.Stdout, "%d fixtures, %d failed\n", len(dirs), failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func reportFixture(w io.Writer, dir string, verbose bool) bool {
	outcome, err := interpreter.RunFixture(dir)
	if err != nil {
		fmt.Fprintf(w, "FAIL %s\n    %v\n", dir, err)
		return false
	}
	problems := outcome.Mismatches()
	if len(problems) == 0 {
		if verbose {
			fmt.Fprintf(w, "ok   %s\n", dir)
		}
		return true
	}
	fmt.Fprintf(w, "FAIL %s", dir)
	if desc := strings.TrimSpace(outcome.Fixture.Description); desc != "" {
		fmt.Fprintf(w, " (%s)", desc)
	}
	fmt.Fprintln(w)
	for _, problem := range problems {
		fmt.Fprintf(w, "    %s\n", problem)
	}
	return false
}
