package utils

import (
	"fmt"
	"os/exec"
)

// GitOperations versions a produced project directory.
type GitOperations struct {
	workingDir string
}

// NewGitOperations creates a GitOperations instance for workingDir.
func NewGitOperations(workingDir string) *GitOperations {
	return &GitOperations{workingDir: workingDir}
}

// CheckGitRepo checks whether workingDir is already a git repository.
func (g *GitOperations) CheckGitRepo() error {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = g.workingDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("not a git repository")
	}
	return nil
}

// InitRepo initializes a fresh git repository in workingDir.
func (g *GitOperations) InitRepo() error {
	cmd := exec.Command("git", "init")
	cmd.Dir = g.workingDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to initialize git repository: %w", err)
	}
	return nil
}

// AddFiles stages everything in workingDir.
func (g *GitOperations) AddFiles() error {
	cmd := exec.Command("git", "add", ".")
	cmd.Dir = g.workingDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to add files to git: %w", err)
	}
	return nil
}

// Commit creates a git commit with the given message.
func (g *GitOperations) Commit(message string) error {
	cmd := exec.Command("git", "commit", "-m", message)
	cmd.Dir = g.workingDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to create commit: %w", err)
	}
	return nil
}

// InitAndCommit turns a produced project into a git repository with an
// initial commit, so later manual fixes have a baseline to diff against.
// No-op when the directory is already a repository.
func (g *GitOperations) InitAndCommit(message string) error {
	if g.CheckGitRepo() == nil {
		return nil
	}
	if err := g.InitRepo(); err != nil {
		return err
	}
	if err := g.AddFiles(); err != nil {
		return err
	}
	return g.Commit(message)
}
