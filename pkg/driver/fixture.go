package driver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// FixtureFile is the manifest name inside a fixture directory.
const FixtureFile = "fixture.yml"

// Fixture is a program plus the outcome it must produce.
type Fixture struct {
	Dir         string
	Path        string
	Description string
	Config      Config
	Program     *yaml.Node
	Expect      FixtureExpectation
}

// FixtureExpectation lists the observable results checked after a run. Result
// is the formatted value of the last top-level expression; Error is a
// substring of the expected error message.
type FixtureExpectation struct {
	Result   *string  `yaml:"result"`
	Stdout   []string `yaml:"stdout"`
	Error    string   `yaml:"error"`
	Warnings []string `yaml:"warnings"`
}

type fixtureFile struct {
	Description string             `yaml:"description"`
	Config      *configFile        `yaml:"config"`
	Program     yaml.Node          `yaml:"program"`
	Expect      FixtureExpectation `yaml:"expect"`
}

// LoadFixture reads dir/fixture.yml.
func LoadFixture(dir string) (*Fixture, error) {
	path := filepath.Join(dir, FixtureFile)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	var raw fixtureFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("fixture: %s is empty", path)
		}
		return nil, fmt.Errorf("fixture: parse %s: %w", path, err)
	}
	if raw.Program.Kind == 0 {
		return nil, fmt.Errorf("fixture: %s has no program", path)
	}
	if raw.Program.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("fixture: %s: program must be a sequence of expressions", path)
	}

	cfg := DefaultConfig()
	cfg.Warnings = WarningsDiscard
	raw.Config.applyTo(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fixture: %s: %w", path, err)
	}

	program := raw.Program
	return &Fixture{
		Dir:         dir,
		Path:        path,
		Description: raw.Description,
		Config:      cfg,
		Program:     &program,
		Expect:      raw.Expect,
	}, nil
}

// DiscoverFixtures walks root and returns every directory holding a
// fixture.yml, sorted.
func DiscoverFixtures(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && len(d.Name()) > 0 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == FixtureFile {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fixture: walk %s: %w", root, err)
	}
	sort.Strings(dirs)
	return dirs, nil
}
