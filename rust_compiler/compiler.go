package rust_compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/morler/oxidize/logging"
	"github.com/morler/oxidize/rust_extractor"
)

// ErrMissingManifest reports a build attempted without a Cargo.toml. This is
// a pipeline defect, not a compile failure, and is never retried.
var ErrMissingManifest = errors.New("Cargo.toml not found in project directory")

// Timeouts bounds each cargo phase. A phase that exceeds its bound is
// treated the same as a non-zero exit.
type Timeouts struct {
	Check  time.Duration `mapstructure:"check"`
	Build  time.Duration `mapstructure:"build"`
	Test   time.Duration `mapstructure:"test"`
	Format time.Duration `mapstructure:"format"`
	Lint   time.Duration `mapstructure:"lint"`
}

// DefaultTimeouts mirrors the bounds the toolchain phases were tuned for.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Check:  5 * time.Minute,
		Build:  10 * time.Minute,
		Test:   5 * time.Minute,
		Format: 1 * time.Minute,
		Lint:   5 * time.Minute,
	}
}

// BuildOutcome is the result of one check+build pass. TestsPassed is
// recorded separately and never converts a successful build into a failure.
type BuildOutcome struct {
	Succeeded   bool
	TestsPassed bool
	Diagnostics string
}

// Compiler drives the external cargo toolchain on a materialized project.
type Compiler struct {
	logger   *logging.Logger
	timeouts Timeouts
}

// NewCompiler creates a compiler and probes the toolchain once. A missing
// toolchain is not fatal here; it surfaces later as build failures.
func NewCompiler(logger *logging.Logger, timeouts Timeouts) *Compiler {
	compiler := &Compiler{
		logger:   logger,
		timeouts: timeouts,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	probe := exec.CommandContext(ctx, "cargo", "--version")
	output, err := probe.Output()
	if err != nil {
		logger.Warnf("Rust toolchain not found. Install from https://rustup.rs/")
	} else {
		logger.Infof("Rust toolchain: %s", strings.TrimSpace(string(output)))
	}

	return compiler
}

// runCargo executes one cargo subcommand under its timeout and returns the
// captured stderr. A deadline hit is reported as a timeout diagnostic.
func (c *Compiler) runCargo(ctx context.Context, projectDir string, timeout time.Duration, args ...string) (bool, string) {
	phaseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(phaseCtx, "cargo", args...)
	cmd.Dir = projectDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if phaseCtx.Err() == context.DeadlineExceeded {
		return false, fmt.Sprintf("cargo %s timed out after %s", args[0], timeout)
	}
	if err != nil {
		return false, stderr.String()
	}

	return true, stderr.String()
}

func (c *Compiler) hasManifest(projectDir string) bool {
	return fileExists(filepath.Join(projectDir, rust_extractor.ManifestFileName))
}

// CheckAndCollectErrors runs the check and build phases and returns whether
// they passed plus the raw diagnostic text on failure.
func (c *Compiler) CheckAndCollectErrors(ctx context.Context, projectDir string) (bool, string) {
	if !c.hasManifest(projectDir) {
		return false, ErrMissingManifest.Error()
	}

	c.logger.Infof("Running cargo check...")
	if ok, diagnostics := c.runCargo(ctx, projectDir, c.timeouts.Check, "check"); !ok {
		return false, diagnostics
	}

	c.logger.Infof("Building...")
	if ok, diagnostics := c.runCargo(ctx, projectDir, c.timeouts.Build, "build"); !ok {
		return false, diagnostics
	}

	return true, ""
}

// Build runs check and build, then tests, then best-effort format and lint.
// The returned error is non-nil only for the non-retryable missing-manifest
// precondition; compile failures come back as an unsuccessful outcome.
func (c *Compiler) Build(ctx context.Context, projectDir string) (*BuildOutcome, error) {
	c.logger.Infof("Compiling and testing: %s", projectDir)

	if !c.hasManifest(projectDir) {
		return nil, ErrMissingManifest
	}

	c.logger.Infof("Running cargo check...")
	if ok, diagnostics := c.runCargo(ctx, projectDir, c.timeouts.Check, "check"); !ok {
		c.logger.Errorf("Cargo check failed:")
		c.logger.Errorf("%s", diagnostics)
		c.logHints(diagnostics)
		return &BuildOutcome{Diagnostics: diagnostics}, nil
	}

	c.logger.Infof("Building...")
	if ok, diagnostics := c.runCargo(ctx, projectDir, c.timeouts.Build, "build"); !ok {
		c.logger.Errorf("Build failed:")
		c.logger.Errorf("%s", diagnostics)
		c.logHints(diagnostics)
		return &BuildOutcome{Diagnostics: diagnostics}, nil
	}

	c.logger.Infof("Build successful")

	outcome := &BuildOutcome{Succeeded: true}
	outcome.TestsPassed = c.runTests(ctx, projectDir)

	c.formatCode(ctx, projectDir)
	c.lintCode(ctx, projectDir)

	return outcome, nil
}

func (c *Compiler) runTests(ctx context.Context, projectDir string) bool {
	c.logger.Infof("Running tests...")

	ok, _ := c.runCargo(ctx, projectDir, c.timeouts.Test, "test")
	if ok {
		c.logger.Infof("All tests passed")
	} else {
		c.logger.Warnf("Some tests failed")
	}
	return ok
}

// formatCode runs rustfmt; failures are swallowed.
func (c *Compiler) formatCode(ctx context.Context, projectDir string) {
	if ok, _ := c.runCargo(ctx, projectDir, c.timeouts.Format, "fmt"); ok {
		c.logger.Debugf("Code formatted")
	}
}

// lintCode runs clippy; failures are swallowed, suggestions are counted.
func (c *Compiler) lintCode(ctx context.Context, projectDir string) {
	ok, stderr := c.runCargo(ctx, projectDir, c.timeouts.Lint, "clippy", "--", "-D", "warnings")
	if ok {
		return
	}

	var suggestions int
	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, "warning:") || strings.Contains(line, "error:") {
			suggestions++
		}
	}
	if suggestions > 0 {
		c.logger.Infof("Clippy suggestions: %d", suggestions)
	}
}

// errorHints maps diagnostic substrings to human-readable hints. Logging
// only; classification never affects control flow.
var errorHints = []struct {
	pattern    string
	suggestion string
}{
	{"cannot find crate", "Missing dependency in Cargo.toml"},
	{"cannot find function", "Function not defined or imported"},
	{"cannot find type", "Type not defined or imported"},
	{"mismatched types", "Type mismatch - check variable types"},
	{"borrow checker", "Ownership/borrowing issue - review lifetimes"},
	{"cannot move out", "Ownership violation - consider cloning or borrowing"},
}

// AnalyzeErrors returns the hints whose patterns appear in the diagnostics.
func AnalyzeErrors(diagnostics string) []string {
	lower := strings.ToLower(diagnostics)

	var hints []string
	for _, hint := range errorHints {
		if strings.Contains(lower, hint.pattern) {
			hints = append(hints, fmt.Sprintf("%s: %s", hint.pattern, hint.suggestion))
		}
	}
	return hints
}

func (c *Compiler) logHints(diagnostics string) {
	hints := AnalyzeErrors(diagnostics)
	if len(hints) == 0 {
		return
	}

	c.logger.Infof("Error analysis:")
	for _, hint := range hints {
		c.logger.Infof("  - %s", hint)
	}
}
