//go:build mage

// Package main provides build targets for sheetsdb using Mage.
//
// Usage:
//
//	mage build      Compile the sheetsdb binary to bin/
//	mage test       Run every test
//	mage testShort  Run tests with -short, skipping the slower backend suites
//	mage cover      Write a coverage profile to bin/cover.out
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install sheetsdb to GOPATH/bin
//	mage stats      Print Go line counts per package
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "sheetsdb"
	binaryDir  = "bin"
	cmdDir     = "./cmd/sheetsdb"
)

// Build compiles the sheetsdb binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestShort runs tests with -short.
func TestShort() error {
	return sh.RunV("go", "test", "-short", "./...")
}

// Cover runs all tests with a coverage profile and prints the total.
func Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "cover.out")
	if err := sh.RunV("go", "test", "-coverprofile="+profile, "./..."); err != nil {
		return err
	}
	out, err := sh.Output("go", "tool", "cover", "-func="+profile)
	if err != nil {
		return err
	}
	lines := strings.Split(out, "\n")
	fmt.Println(lines[len(lines)-1])
	return nil
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), filepath.Join(binaryDir, binaryName))
}

// Stats prints production and test line counts per package directory.
func Stats() error {
	type counts struct{ prod, test int }
	byDir := map[string]*counts{}

	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") || path == binaryDir || path == "magefiles") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return nil
		}
		dir := filepath.Dir(path)
		if byDir[dir] == nil {
			byDir[dir] = &counts{}
		}
		if strings.HasSuffix(path, "_test.go") {
			byDir[dir].test += n
		} else {
			byDir[dir].prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	var total counts
	for _, dir := range dirs {
		c := byDir[dir]
		fmt.Printf("%-24s %6d prod %6d test\n", dir, c.prod, c.test)
		total.prod += c.prod
		total.test += c.test
	}
	fmt.Printf("%-24s %6d prod %6d test\n", "total", total.prod, total.test)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
