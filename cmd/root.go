package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morler/oxidize/config"
	"github.com/morler/oxidize/constants/lipgloss"
	"github.com/morler/oxidize/logging"
	"github.com/morler/oxidize/providers"
	providers_contracts "github.com/morler/oxidize/providers/contracts"
	"github.com/morler/oxidize/repo_ingester"
	"github.com/morler/oxidize/rust_compiler"
	"github.com/morler/oxidize/token_management"
	token_contracts "github.com/morler/oxidize/token_management/contracts"
)

// RootDependencies holds the wired components shared by all subcommands.
type RootDependencies struct {
	Config              *config.Config
	Logger              *logging.Logger
	Ingester            *repo_ingester.Ingester
	Compiler            *rust_compiler.Compiler
	CurrentChatProvider providers_contracts.IChatAIProvider
	TokenManagement     token_contracts.ITokenManagement
	Cwd                 string
}

// rootCmd: oxidize
var rootCmd = &cobra.Command{
	Use:   "oxidize",
	Short: "AI-powered Python to Rust project converter",
	Long: `oxidize converts a Python repository into a complete Rust project.
It sends the ingested sources to an AI model, materializes the generated
project on disk, and drives the cargo toolchain through a bounded
compile-fix loop until the project builds or the attempts run out.`,
	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Println(config.DefaultConfig.Version)
			return
		}
		_ = cmd.Help()
	},
}

// handleRootCommand loads config and wires every shared dependency.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	rootDependencies := &RootDependencies{}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render("Error getting current directory"))
		return nil
	}
	rootDependencies.Cwd = cwd

	rootDependencies.Config = config.LoadConfigWithCache(cmd.Root(), cwd)

	rootDependencies.Logger = logging.NewLogger(rootDependencies.Config.Verbose, rootDependencies.Config.LogFile)

	rootDependencies.TokenManagement = token_management.NewTokenManager()

	rootDependencies.Ingester = repo_ingester.NewIngester(rootDependencies.Logger, rootDependencies.Config.EnableCache)

	rootDependencies.Compiler = rust_compiler.NewCompiler(rootDependencies.Logger, rootDependencies.Config.Timeouts)

	chatProvider, err := providers.ChatProviderFactory(rootDependencies.Config.AIProviderConfig, rootDependencies.TokenManagement)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return nil
	}
	rootDependencies.CurrentChatProvider = chatProvider

	return rootDependencies
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	config.InitFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}
