package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

type fetchOptions struct {
	URL  string
	Rev  string
	Name string
}

func runFixtures(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "lazr fixtures requires a subcommand (fetch)")
		return 1
	}
	switch args[0] {
	case "fetch":
		return runFixturesFetch(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown fixtures subcommand %q\n", args[0])
		return 1
	}
}

func parseFetchArguments(args []string) (fetchOptions, error) {
	var opts fetchOptions
	for idx := 0; idx < len(args); idx++ {
		arg := args[idx]
		switch arg {
		case "--rev", "--name":
			if idx+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a value", arg)
			}
			idx++
			if arg == "--rev" {
				opts.Rev = args[idx]
			} else {
				opts.Name = args[idx]
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unknown flag %s", arg)
			}
			if opts.URL != "" {
				return opts, fmt.Errorf("unexpected argument %s", arg)
			}
			opts.URL = arg
		}
	}
	if opts.URL == "" {
		return opts, errors.New("a git URL is required")
	}
	if opts.Name == "" {
		opts.Name = suiteNameFromURL(opts.URL)
	}
	if opts.Rev == "" {
		opts.Rev = "HEAD"
	}
	return opts, nil
}

// runFixturesFetch clones a fixture suite into the cache and prints the
// checkout directory.
func runFixturesFetch(args []string) int {
	opts, err := parseFetchArguments(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lazr fixtures fetch: %v\n", err)
		return 1
	}
	home, err := resolveLazrHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve LAZR_HOME: %v\n", err)
		return 1
	}
	baseDir := filepath.Join(home, "fixtures", sanitizePathSegment(opts.Name))
	dir, commit, err := ensureFixtureCheckout(baseDir, opts.URL, plumbing.Revision(opts.Rev))
	if err != nil {
		fmt.Fprintf(os.Stderr, "lazr fixtures fetch: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "Fetched %s@%s\n", opts.Name, commit)
	fmt.Fprintln(os.Stdout, dir)
	return 0
}

func resolveLazrHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("LAZR_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve LAZR_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".lazr"), nil
}

// ensureFixtureCheckout clones url, resolves revision and leaves the checkout
// at baseDir/<commit>. An existing checkout of the same commit is reused.
func ensureFixtureCheckout(baseDir, url string, revision plumbing.Revision) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	targetDir := filepath.Join(baseDir, hash.String())
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return targetDir, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return targetDir, hash.String(), nil
}

func suiteNameFromURL(url string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
	if idx := strings.LastIndexAny(trimmed, "/:"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "suite"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
