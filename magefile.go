//go:build mage

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	CmdDir   = "cmd/spshare"
	BuildDir = "bin"
)

func sh(env map[string]string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdout, cmd.Stderr, cmd.Stdin = os.Stdout, os.Stderr, os.Stdin
	return cmd.Run()
}

func out(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return strings.TrimSpace(buf.String()), err
}

func which(bin string) bool {
	_, err := exec.LookPath(bin)
	return err == nil
}

func binPath() string {
	name := "spshare"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(BuildDir, name)
}

// version is the git description of HEAD, or "dev" outside a checkout.
func version() string {
	v, err := out("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

// Deps installs the lint and vulnerability tools.
func Deps() error {
	for _, pkg := range []string{
		"honnef.co/go/tools/cmd/staticcheck@latest",
		"github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
		"golang.org/x/vuln/cmd/govulncheck@latest",
	} {
		if err := sh(nil, "go", "install", pkg); err != nil {
			return err
		}
	}
	return nil
}

// Build compiles bin/spshare with the version stamped in.
func Build() error {
	if err := os.MkdirAll(BuildDir, 0o755); err != nil {
		return err
	}
	return sh(map[string]string{"CGO_ENABLED": "0"}, "go", "build",
		"-trimpath",
		"-ldflags", "-s -w -X main.version="+version(),
		"-o", binPath(),
		"./"+CmdDir,
	)
}

// Serve runs the catalog API from source against ./spshare.db.
func Serve() error {
	return sh(nil, "go", "run", "./"+CmdDir, "serve")
}

// Test runs the unit tests with the race detector. NO_RACE=1 skips it.
func Test() error {
	if os.Getenv("NO_RACE") == "1" {
		return sh(nil, "go", "test", "./...")
	}
	return sh(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "-race", "./...")
}

// Cover writes coverage.out and coverage.html.
func Cover() error {
	if err := sh(nil, "go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh(nil, "go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Lint runs go vet, staticcheck and golangci-lint.
func Lint() error {
	for _, b := range []string{"staticcheck", "golangci-lint"} {
		if !which(b) {
			return fmt.Errorf("%s not found; run 'mage deps'", b)
		}
	}
	if err := sh(nil, "go", "vet", "./..."); err != nil {
		return err
	}
	if err := sh(nil, "staticcheck", "./..."); err != nil {
		return err
	}
	return sh(nil, "golangci-lint", "run")
}

// Vuln checks dependencies for known vulnerabilities.
func Vuln() error {
	if !which("govulncheck") {
		return errors.New("govulncheck not found; run 'mage deps'")
	}
	return sh(nil, "govulncheck", "./...")
}

// FmtCheck fails when gofmt would change a file.
func FmtCheck() error {
	files, _ := out("gofmt", "-l", ".")
	if files != "" {
		return errors.New("needs gofmt:\n" + files)
	}
	return nil
}

// TidyCheck fails when go mod tidy changes go.mod or go.sum.
func TidyCheck() error {
	before, _ := out("git", "status", "--porcelain", "--", "go.mod", "go.sum")
	if err := sh(nil, "go", "mod", "tidy"); err != nil {
		return err
	}
	after, _ := out("git", "status", "--porcelain", "--", "go.mod", "go.sum")
	if before != after {
		diff, _ := out("git", "--no-pager", "diff", "--", "go.mod", "go.sum")
		return fmt.Errorf("go.mod/sum changed; run 'go mod tidy' and commit.\n%s", diff)
	}
	return nil
}

// Clean removes build and coverage output.
func Clean() error {
	for _, p := range []string{BuildDir, "coverage.out", "coverage.html"} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}

// Verify runs every check, then builds and tests.
func Verify() error {
	for _, f := range []func() error{FmtCheck, TidyCheck, Lint, Vuln, Build, Test} {
		if err := f(); err != nil {
			return err
		}
	}
	fmt.Println("build and checks passed")
	return nil
}
