//go:build mage

// Package main contains Mage build targets for citekit developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "citekit"
	cmdPkg  = "./cmd/citekit"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + version()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests. Golden files are rewritten when UPDATE is set.
func Test() error {
	args := []string{"test", "./..."}
	if os.Getenv("UPDATE") != "" {
		args = append(args, "-update")
	}
	return sh.RunV("go", args...)
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check vets and tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Migrate converts every legacy style in DIR (default: styles/legacy) into
// a YAML style next to it.
func Migrate() error {
	mg.Deps(Build)
	dir := os.Getenv("DIR")
	if dir == "" {
		dir = filepath.Join("styles", "legacy")
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.csl"))
	if err != nil {
		return err
	}
	bin := filepath.Join(binDir, binName)
	for _, f := range files {
		out := strings.TrimSuffix(f, ".csl") + ".yaml"
		if err := sh.RunV(bin, "migrate", f, "-o", out); err != nil {
			return fmt.Errorf("migrating %s: %w", f, err)
		}
	}
	fmt.Printf("Migrated %d styles.\n", len(files))
	return nil
}

// Stats prints project metrics: Go production/test LOC and style counts.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	styles, err := filepath.Glob(filepath.Join("internal", "style", "styles", "*.yaml"))
	if err != nil {
		return err
	}
	locales, err := filepath.Glob(filepath.Join("internal", "locale", "locales", "*.yaml"))
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Built-in styles:                %d\n", len(styles))
	fmt.Printf("Built-in locales:               %d\n", len(locales))
	return nil
}

func version() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
// Directories starting with "_" or "." are skipped.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && (strings.HasPrefix(info.Name(), "_") || strings.HasPrefix(info.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}
