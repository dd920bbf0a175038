package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/morler/oxidize/prompt_builder"
)

// promptCmd: oxidize prompt <python-repo>
var promptCmd = &cobra.Command{
	Use:   "prompt [python-repo-path]",
	Short: "Print the conversion prompt for a repository without calling the model",
	Long: `The 'prompt' subcommand ingests a Python repository and prints the exact
conversion prompt that 'convert' would send to the model. Useful for
inspecting what the model sees, or for pasting into another tool.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			os.Exit(1)
		}

		includeSystem, _ := cmd.Flags().GetBool("system")

		if !handlePromptCommand(rootDependencies, cmd.OutOrStdout(), args[0], includeSystem) {
			os.Exit(1)
		}
	},
}

func init() {
	promptCmd.Flags().Bool("system", false, "Include the system prompt before the conversion prompt")

	rootCmd.AddCommand(promptCmd)
}

func handlePromptCommand(rootDependencies *RootDependencies, out io.Writer, repoPath string, includeSystem bool) bool {
	pythonFiles, err := rootDependencies.Ingester.IngestPythonRepo(repoPath)
	if err != nil {
		rootDependencies.Logger.Errorf("Failed to ingest repository: %v", err)
		return false
	}

	userPrompt, err := prompt_builder.BuildConversionPrompt(pythonFiles)
	if err != nil {
		rootDependencies.Logger.Errorf("%v", err)
		return false
	}

	if includeSystem {
		fmt.Fprintln(out, prompt_builder.ConversionSystemPrompt())
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, userPrompt)

	return true
}
