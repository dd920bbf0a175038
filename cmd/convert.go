package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/morler/oxidize/constants/lipgloss"
	"github.com/morler/oxidize/logging"
	"github.com/morler/oxidize/prompt_builder"
	"github.com/morler/oxidize/providers"
	providers_contracts "github.com/morler/oxidize/providers/contracts"
	"github.com/morler/oxidize/rust_compiler"
	"github.com/morler/oxidize/rust_extractor"
	"github.com/morler/oxidize/utils"
)

// convertOptions are the per-invocation flags of the convert command.
type convertOptions struct {
	dryRun          bool
	preview         bool
	skipCompilation bool
	force           bool
	git             bool
	keepTemp        bool
}

// convertCmd: oxidize convert <python-repo>
var convertCmd = &cobra.Command{
	Use:   "convert [python-repo-path]",
	Short: "Convert a Python repository to a compiling Rust project",
	Long: `The 'convert' subcommand ingests a Python repository, asks the AI model
for a complete Rust rendition, writes the generated project to disk, and
drives cargo through a bounded compile-fix loop. Failed builds feed the
compiler diagnostics back to the model for another attempt.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			os.Exit(1)
		}

		var options convertOptions
		options.dryRun, _ = cmd.Flags().GetBool("dry-run")
		options.preview, _ = cmd.Flags().GetBool("preview")
		options.skipCompilation, _ = cmd.Flags().GetBool("skip-compilation")
		options.force, _ = cmd.Flags().GetBool("force")
		options.git, _ = cmd.Flags().GetBool("git")
		options.keepTemp, _ = cmd.Flags().GetBool("keep-temp")

		if !handleConvertCommand(rootDependencies, options, args[0]) {
			os.Exit(1)
		}
	},
}

func init() {
	convertCmd.Flags().Bool("dry-run", false, "Print the conversion prompt and exit without calling the model")
	convertCmd.Flags().Bool("preview", false, "Show the extracted project with syntax highlighting before writing it")
	convertCmd.Flags().Bool("skip-compilation", false, "Write the project but do not run the cargo toolchain")
	convertCmd.Flags().BoolP("force", "f", false, "Overwrite an existing project directory without confirmation")
	convertCmd.Flags().Bool("git", false, "Initialize a git repository with an initial commit in the produced project")
	convertCmd.Flags().Bool("keep-temp", false, "Keep the working copy in the output directory after organizing")

	rootCmd.AddCommand(convertCmd)
}

// responseFixGenerator adapts the chat provider to the fix loop: it rebuilds
// the fix prompt from the current project and drains the streamed response.
type responseFixGenerator struct {
	provider providers_contracts.IChatAIProvider
}

func (g *responseFixGenerator) GenerateFix(ctx context.Context, priorFiles map[string]string, diagnostics string) (string, error) {
	userPrompt := prompt_builder.BuildFixPrompt(priorFiles, diagnostics)
	responseChan := g.provider.ChatCompletionRequest(ctx, userPrompt, prompt_builder.FixSystemPrompt())
	return providers.Collect(responseChan)
}

func handleConvertCommand(rootDependencies *RootDependencies, options convertOptions, repoPath string) bool {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go utils.GracefulShutdown(ctx, func() {
		rootDependencies.TokenManagement.ClearToken()
	})

	logger := rootDependencies.Logger

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)

	displayTokens := func() {
		rootDependencies.TokenManagement.DisplayTokens(rootDependencies.Config.AIProviderConfig.Provider, rootDependencies.Config.AIProviderConfig.Model)
	}

	// Step 1: ingest the Python repository.
	spinnerIngest, _ := spinner.Start("Ingesting Python repository...")
	pythonFiles, err := rootDependencies.Ingester.IngestPythonRepo(repoPath)
	spinnerIngest.Stop()
	fmt.Print("\r")
	if err != nil {
		logger.Errorf("Failed to ingest repository: %v", err)
		return false
	}

	userPrompt, err := prompt_builder.BuildConversionPrompt(pythonFiles)
	if err != nil {
		logger.Errorf("%v", err)
		return false
	}

	// A dry run stops before any generation call: no tokens are spent.
	if options.dryRun {
		fmt.Println(lipgloss.Info.Render("── conversion prompt ──"))
		fmt.Println(userPrompt)
		return true
	}

	// Step 2: generate the Rust project.
	spinnerGenerate, _ := spinner.Start(fmt.Sprintf("%s is generating Rust code...", rootDependencies.Config.AIProviderConfig.Model))
	responseChan := rootDependencies.CurrentChatProvider.ChatCompletionRequest(ctx, userPrompt, prompt_builder.ConversionSystemPrompt())
	response, err := providers.Collect(responseChan)
	spinnerGenerate.Stop()
	fmt.Print("\r")
	if err != nil {
		logger.Errorf("Generation failed: %v", err)
		displayTokens()
		return false
	}

	// Step 3: extract the file set from the response.
	extractedFiles, err := rust_extractor.Extract(response)
	if err != nil {
		logger.Errorf("Extraction failed: %v", err)
		displayTokens()
		return false
	}
	logger.Infof("Extracted %d file(s)", len(extractedFiles))

	if options.preview {
		if err := utils.RenderRustPreview(extractedFiles, rootDependencies.Config.Theme); err != nil {
			logger.Errorf("Preview failed: %v", err)
			return false
		}
	}

	// Step 4: materialize, confirming overwrites unless forced.
	outputDir := rootDependencies.Config.OutputDir
	if manifest, ok := extractedFiles[rust_extractor.ManifestFileName]; ok && !options.force {
		targetDir := filepath.Join(outputDir, rust_compiler.ExtractProjectName(manifest))
		if _, err := os.Stat(targetDir); err == nil {
			accepted, promptErr := utils.ConfirmPrompt(fmt.Sprintf("Overwrite existing project %s?", targetDir), bufio.NewReader(os.Stdin))
			if promptErr != nil || !accepted {
				logger.Warnf("Conversion cancelled")
				return false
			}
		}
	}

	projectDir, err := rust_compiler.SaveRustProject(logger, extractedFiles, outputDir)
	if err != nil {
		logger.Errorf("Failed to save project: %v", err)
		return false
	}

	buildSucceeded := false
	if options.skipCompilation {
		logger.Infof("Skipping compilation")
	} else {
		// Step 5: bounded compile-fix loop.
		fixLoop := rust_compiler.NewFixLoop(
			rootDependencies.Compiler,
			&responseFixGenerator{provider: rootDependencies.CurrentChatProvider},
			logger,
			outputDir,
			rootDependencies.Config.MaxFixAttempts,
		)
		buildSucceeded = fixLoop.RunWithRetries(ctx, projectDir, extractedFiles)
	}

	// Step 6: organize the finished conversion.
	finalDir, err := organizeProject(logger, rootDependencies, projectDir, repoPath, buildSucceeded, options.keepTemp)
	if err != nil {
		logger.Warnf("Failed to organize project: %v", err)
		finalDir = projectDir
	}

	if options.git {
		if err := utils.NewGitOperations(finalDir).InitAndCommit("Initial conversion from Python"); err != nil {
			logger.Warnf("Git initialization failed: %v", err)
		}
	}

	displayTokens()

	switch {
	case options.skipCompilation:
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ Project written to %s", finalDir)))
		return true
	case buildSucceeded:
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔️ Conversion succeeded: %s", finalDir)))
		return true
	default:
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("❌ Project does not compile: %s", finalDir)))
		return false
	}
}

// organizeProject moves the finished project under the projects directory
// and drops a conversion_metadata.txt next to the sources. keepTemp leaves
// a working copy in the output directory untouched.
func organizeProject(logger *logging.Logger, rootDependencies *RootDependencies, projectDir string, repoPath string, buildSucceeded bool, keepTemp bool) (string, error) {
	projectsDir := rootDependencies.Config.ProjectsDir
	if projectsDir == "" {
		return projectDir, nil
	}

	if err := os.MkdirAll(projectsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create projects directory: %w", err)
	}

	finalDir := filepath.Join(projectsDir, filepath.Base(projectDir))
	if _, err := os.Stat(finalDir); err == nil {
		if err := os.RemoveAll(finalDir); err != nil {
			return "", fmt.Errorf("failed to replace existing project: %w", err)
		}
	}

	if keepTemp {
		if err := copyTree(projectDir, finalDir); err != nil {
			return "", err
		}
	} else {
		if err := os.Rename(projectDir, finalDir); err != nil {
			// Cross-device moves fall back to a copy.
			if copyErr := copyTree(projectDir, finalDir); copyErr != nil {
				return "", copyErr
			}
			_ = os.RemoveAll(projectDir)
		}
	}

	status := "FAILED"
	if buildSucceeded {
		status = "SUCCESS"
	}
	metadata := fmt.Sprintf("Source: %s\nModel: %s\nConverted: %s\nBuild: %s\n",
		repoPath,
		rootDependencies.Config.AIProviderConfig.Model,
		time.Now().Format(time.RFC3339),
		status,
	)
	metadataPath := filepath.Join(finalDir, "conversion_metadata.txt")
	if err := os.WriteFile(metadataPath, []byte(metadata), 0644); err != nil {
		logger.Warnf("Failed to write conversion metadata: %v", err)
	}

	logger.Infof("Project organized: %s", finalDir)
	return finalDir, nil
}

func copyTree(src string, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, relative)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, content, info.Mode())
	})
}
