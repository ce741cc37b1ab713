package driver

import (
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FixtureFile, `
description: adds numbers
config:
  max_depth: 30
program:
  - ["+", 1, 2]
expect:
  result: "[1] 3"
  stdout: []
`)
	fx, err := LoadFixture(dir)
	if err != nil {
		t.Fatalf("LoadFixture returned error: %v", err)
	}
	if fx.Description != "adds numbers" || fx.Dir != dir || fx.Path != filepath.Join(dir, FixtureFile) {
		t.Fatalf("unexpected fixture %+v", fx)
	}
	if fx.Config.MaxDepth != 30 || fx.Config.Warnings != WarningsDiscard || !fx.Config.MatchCache {
		t.Fatalf("unexpected fixture config %+v", fx.Config)
	}
	if fx.Program.Kind != yaml.SequenceNode || len(fx.Program.Content) != 1 {
		t.Fatalf("unexpected program node kind=%v", fx.Program.Kind)
	}
	if fx.Expect.Result == nil || *fx.Expect.Result != "[1] 3" {
		t.Fatalf("unexpected expected result %v", fx.Expect.Result)
	}
	if fx.Expect.Stdout == nil || len(fx.Expect.Stdout) != 0 {
		t.Fatalf("expected an empty stdout expectation, got %#v", fx.Expect.Stdout)
	}
	if fx.Expect.Warnings != nil {
		t.Fatalf("expected warnings to be unchecked, got %#v", fx.Expect.Warnings)
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		want     string
	}{
		{"no program", "description: x\n", "has no program"},
		{"program shape", "program: {a: 1}\n", "program must be a sequence of expressions"},
		{"unknown key", "program: []\nexpected: {}\n", "field expected not found"},
		{"invalid config", "config:\n  max_depth: 0\nprogram: []\n", "max_depth must be positive"},
		{"empty", "", "is empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FixtureFile, tc.contents)
			_, err := LoadFixture(dir)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
	if _, err := LoadFixture(t.TempDir()); err == nil {
		t.Fatalf("expected error for a directory without a fixture")
	}
}

func TestDiscoverFixturesSkipsHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b/fixture.yml", "a/nested/fixture.yml", ".cache/fixture.yml", "a/notes.txt"} {
		writeFile(t, root, rel, "program: []\n")
	}
	dirs, err := DiscoverFixtures(root)
	if err != nil {
		t.Fatalf("DiscoverFixtures returned error: %v", err)
	}
	want := []string{filepath.Join(root, "a", "nested"), filepath.Join(root, "b")}
	if len(dirs) != len(want) || dirs[0] != want[0] || dirs[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, dirs)
	}
}
