package rust_compiler

import (
	"context"

	"github.com/morler/oxidize/logging"
	"github.com/morler/oxidize/rust_extractor"
	"github.com/morler/oxidize/utils"
)

// DefaultMaxAttempts is the fixed retry bound of the compile-fix loop.
const DefaultMaxAttempts = 3

// ProjectBuilder is the build driver seam of the fix loop.
type ProjectBuilder interface {
	Build(ctx context.Context, projectDir string) (*BuildOutcome, error)
}

// FixGenerator produces a corrected-project response from the prior code
// and the compiler diagnostics.
type FixGenerator interface {
	GenerateFix(ctx context.Context, priorFiles map[string]string, diagnostics string) (string, error)
}

type loopState int

const (
	stateAttempting loopState = iota
	stateSucceeded
	stateExhausted
)

// FixLoop re-materializes and re-builds a project until it compiles or the
// attempt bound is hit. Each failed attempt feeds the diagnostics back
// through the generator; a failed fix step only consumes the attempt.
type FixLoop struct {
	builder     ProjectBuilder
	generator   FixGenerator
	logger      *logging.Logger
	outputDir   string
	maxAttempts int

	// Extraction/materialization seams, replaceable in tests.
	extract     func(response string) (map[string]string, error)
	materialize func(logger *logging.Logger, files map[string]string, outputDir string) (string, error)
}

// NewFixLoop wires a fix loop over the real extractor and materializer.
func NewFixLoop(builder ProjectBuilder, generator FixGenerator, logger *logging.Logger, outputDir string, maxAttempts int) *FixLoop {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &FixLoop{
		builder:     builder,
		generator:   generator,
		logger:      logger,
		outputDir:   outputDir,
		maxAttempts: maxAttempts,
		extract:     rust_extractor.Extract,
		materialize: SaveRustProject,
	}
}

// RunWithRetries drives the loop to a terminal state and reports whether
// the project ended up building. With the default bound of 3, the builder
// runs at most 3 times and the generator at most 2.
func (l *FixLoop) RunWithRetries(ctx context.Context, projectDir string, initialFiles map[string]string) bool {
	files := initialFiles
	attempt := 0
	state := stateAttempting

	for state == stateAttempting {
		l.logger.Infof("Build attempt %d/%d", attempt+1, l.maxAttempts)

		outcome, err := l.builder.Build(ctx, projectDir)
		if err != nil {
			// Missing manifest is a pipeline defect, not a compile
			// failure; retrying cannot help.
			l.logger.Errorf("Build precondition failed: %v", err)
			return false
		}

		if outcome.Succeeded {
			state = stateSucceeded
			break
		}

		attempt++
		if attempt >= l.maxAttempts {
			state = stateExhausted
			break
		}

		newFiles, newDir, fixErr := l.applyFix(ctx, files, outcome.Diagnostics)
		if fixErr != nil {
			// The attempt is consumed and the next build runs against
			// the unmodified project.
			l.logger.Warnf("Fix generation failed, retrying with unchanged project: %v", fixErr)
			continue
		}

		if diff := utils.RenderFileDiffs(files, newFiles); diff != "" {
			l.logger.Debugf("Fix attempt changed:\n%s", diff)
		}

		files = newFiles
		projectDir = newDir
	}

	if state == stateSucceeded {
		l.logger.Infof("Project builds after %d attempt(s)", attempt+1)
		return true
	}

	l.logger.Errorf("Project still failing after %d attempts", l.maxAttempts)
	return false
}

// applyFix runs one generate-extract-materialize cycle. Any error leaves
// the project untouched.
func (l *FixLoop) applyFix(ctx context.Context, files map[string]string, diagnostics string) (map[string]string, string, error) {
	response, err := l.generator.GenerateFix(ctx, files, diagnostics)
	if err != nil {
		return nil, "", err
	}

	newFiles, err := l.extract(response)
	if err != nil {
		return nil, "", err
	}

	newDir, err := l.materialize(l.logger, newFiles, l.outputDir)
	if err != nil {
		return nil, "", err
	}

	return newFiles, newDir, nil
}
