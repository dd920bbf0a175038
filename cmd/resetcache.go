package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/morler/oxidize/constants/lipgloss"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Reset the ingestion cache",
	Long: `The 'reset-cache' command removes all cached files in the '.cache' directory.
This includes file content cache and Python outline parsing results.
Use this command to clear corrupted cache or when experiencing cache-related issues.`,
	Run: func(cmd *cobra.Command, args []string) {
		var force bool
		var stats bool

		// Parse flags
		force, _ = cmd.Flags().GetBool("force")
		stats, _ = cmd.Flags().GetBool("stats")

		// Handle reset-cache command
		handleResetCacheCommand(force, stats, cmd)
	},
}

func init() {
	// Define command-specific flags
	resetCacheCmd.Flags().BoolP("force", "f", false, "Force cache reset without confirmation")
	resetCacheCmd.Flags().BoolP("stats", "s", false, "Show cache statistics before reset")

	// Add the reset-cache command to the root command
	rootCmd.AddCommand(resetCacheCmd)
}

func handleResetCacheCommand(force bool, showStats bool, cmd *cobra.Command) {
	rootDependencies := handleRootCommand(cmd)
	if rootDependencies == nil {
		return
	}

	cacheManager := rootDependencies.Ingester.CacheManager()
	if cacheManager == nil {
		fmt.Println(lipgloss.Yellow.Render("Cache is disabled. No cache to reset."))
		return
	}

	// Show cache statistics if requested
	if showStats {
		fmt.Println(lipgloss.Info.Render("Cache Statistics:"))
		if cacheStats, err := cacheManager.GetCacheStats(); err == nil {
			if dir, ok := cacheStats["cache_dir"].(string); ok {
				fmt.Printf("  Cache Directory: %s\n", dir)
			}
			if files, ok := cacheStats["cache_files"].(int); ok {
				fmt.Printf("  Cached Files: %d\n", files)
			}
			if size, ok := cacheStats["total_size"].(int64); ok {
				fmt.Printf("  Total Size: %.2f MB\n", float64(size)/(1024*1024))
			}
			if hitRate, ok := cacheManager.GetPerformanceStats()["hit_rate"].(float64); ok {
				fmt.Printf("  Hit Rate: %.1f%%\n", hitRate)
			}
		} else {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: Could not show statistics: %v", err)))
		}

		// Only show stats, skip the actual reset
		return
	}

	// Confirm reset for full cache reset (if not forced)
	if !force {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Are you sure you want to reset the entire ingestion cache? (y/N): ")
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println(lipgloss.Yellow.Render("Cache reset cancelled."))
			return
		}
	}

	// Reset the cache
	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)

	spinnerInstance, _ := spinner.Start("Resetting ingestion cache...")

	err := cacheManager.ClearCache()
	if err != nil {
		spinnerInstance.Stop()
		fmt.Print("\r")
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error resetting cache: %v", err)))
		return
	}

	spinnerInstance.Stop()
	fmt.Print("\r")
	fmt.Println(lipgloss.Green.Render("✓ Ingestion cache has been successfully reset!"))
}
