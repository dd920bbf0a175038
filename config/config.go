package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/morler/oxidize/constants/lipgloss"
	"github.com/morler/oxidize/providers"
	"github.com/morler/oxidize/rust_compiler"
)

// configCacheEntry holds cached configuration with metadata
type configCacheEntry struct {
	config  *Config
	modTime time.Time
}

// Global cache for configuration files
var (
	configCache = make(map[string]*configCacheEntry)
	cacheMutex  sync.RWMutex
)

// Config represents the structure of the configuration file
type Config struct {
	Version          string                      `mapstructure:"version"`
	Theme            string                      `mapstructure:"theme"`
	EnableCache      bool                        `mapstructure:"enable_cache"`
	Verbose          bool                        `mapstructure:"verbose"`
	LogFile          string                      `mapstructure:"log_file"`
	OutputDir        string                      `mapstructure:"output_dir"`
	ProjectsDir      string                      `mapstructure:"projects_dir"`
	MaxFixAttempts   int                         `mapstructure:"max_fix_attempts"`
	AIProviderConfig *providers.AIProviderConfig `mapstructure:"ai_provider_config"`
	Timeouts         rust_compiler.Timeouts      `mapstructure:"timeouts"`
}

func float32Ptr(v float32) *float32 { return &v }

// DefaultConfig values
var DefaultConfig = Config{
	Version:        "1.0.0",
	Theme:          "dracula",
	EnableCache:    true,
	Verbose:        false,
	LogFile:        "conversion.log",
	OutputDir:      "rust_output",
	ProjectsDir:    "converted_projects",
	MaxFixAttempts: 3,
	AIProviderConfig: &providers.AIProviderConfig{
		Provider:        "gemini",
		BaseURL:         "",
		Model:           "gemini-2.5-pro",
		ApiKey:          "",
		Temperature:     float32Ptr(0.1),
		TopP:            float32Ptr(0.95),
		MaxOutputTokens: 65536,
	},
	Timeouts: rust_compiler.DefaultTimeouts(),
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	// Set default values using Viper
	setDefaults()

	// Automatically read environment variables
	viper.AutomaticEnv()

	// Explicitly bind environment variables to config keys
	bindEnv()

	// Check if the user provided a config file
	if cfgFile != "" {
		// Use the config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Look for configuration files in the current directory
		viper.SetConfigName("oxidize-config") // Name of config file (without extension)
		viper.AddConfigPath(cwd)              // Look in the current working directory

		// Support both JSON and YAML formats
		viper.SetConfigType("yaml") // Set default type
		if err := viper.ReadInConfig(); err != nil {
			// If YAML fails, try JSON
			viper.SetConfigType("json")
			if err := viper.ReadInConfig(); err != nil {
				// If both fail, we'll continue with defaults
				fmt.Println(lipgloss.Yellow.Render("No configuration file found, using defaults"))
			}
		}
	}

	// Read the explicitly specified config file (if any)
	if cfgFile != "" {
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	}

	// Bind CLI flags to override config values
	bindFlags(rootCmd)

	// Unmarshal the configuration into the Config struct
	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	return config
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("enable_cache", DefaultConfig.EnableCache)
	viper.SetDefault("verbose", DefaultConfig.Verbose)
	viper.SetDefault("log_file", DefaultConfig.LogFile)
	viper.SetDefault("output_dir", DefaultConfig.OutputDir)
	viper.SetDefault("projects_dir", DefaultConfig.ProjectsDir)
	viper.SetDefault("max_fix_attempts", DefaultConfig.MaxFixAttempts)
	viper.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	viper.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	viper.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	viper.SetDefault("ai_provider_config.api_key", DefaultConfig.AIProviderConfig.ApiKey)
	viper.SetDefault("ai_provider_config.temperature", *DefaultConfig.AIProviderConfig.Temperature)
	viper.SetDefault("ai_provider_config.top_p", *DefaultConfig.AIProviderConfig.TopP)
	viper.SetDefault("ai_provider_config.max_output_tokens", DefaultConfig.AIProviderConfig.MaxOutputTokens)
	viper.SetDefault("timeouts.check", DefaultConfig.Timeouts.Check)
	viper.SetDefault("timeouts.build", DefaultConfig.Timeouts.Build)
	viper.SetDefault("timeouts.test", DefaultConfig.Timeouts.Test)
	viper.SetDefault("timeouts.format", DefaultConfig.Timeouts.Format)
	viper.SetDefault("timeouts.lint", DefaultConfig.Timeouts.Lint)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("theme", "THEME")
	_ = viper.BindEnv("enable_cache", "ENABLE_CACHE")
	_ = viper.BindEnv("output_dir", "OUTPUT_DIR")
	_ = viper.BindEnv("projects_dir", "PROJECTS_DIR")
	_ = viper.BindEnv("max_fix_attempts", "MAX_FIX_ATTEMPTS")
	_ = viper.BindEnv("ai_provider_config.provider", "PROVIDER")
	_ = viper.BindEnv("ai_provider_config.base_url", "BASE_URL")
	_ = viper.BindEnv("ai_provider_config.model", "MODEL")
	_ = viper.BindEnv("ai_provider_config.temperature", "TEMPERATURE")
	_ = viper.BindEnv("ai_provider_config.api_key", "API_KEY", "GEMINI_API_KEY")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("enable_cache", rootCmd.PersistentFlags().Lookup("enable_cache"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log_file"))
	_ = viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output_dir"))
	_ = viper.BindPFlag("projects_dir", rootCmd.PersistentFlags().Lookup("projects_dir"))
	_ = viper.BindPFlag("max_fix_attempts", rootCmd.PersistentFlags().Lookup("max_fix_attempts"))
	_ = viper.BindPFlag("ai_provider_config.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("ai_provider_config.base_url", rootCmd.PersistentFlags().Lookup("base_url"))
	_ = viper.BindPFlag("ai_provider_config.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("ai_provider_config.temperature", rootCmd.PersistentFlags().Lookup("temperature"))
	_ = viper.BindPFlag("ai_provider_config.api_key", rootCmd.PersistentFlags().Lookup("api_key"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	// Theme configuration
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set customize theme for the generated code preview. (e.g., 'dracula', 'light', 'dark')")

	// Cache configuration
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Enable or disable file caching for repeated conversions of the same repository")

	// Logging configuration
	rootCmd.PersistentFlags().Bool("verbose", DefaultConfig.Verbose, "Enable verbose logging output")
	rootCmd.PersistentFlags().String("log_file", DefaultConfig.LogFile, "Path of the rotating conversion log file")

	// Output configuration
	rootCmd.PersistentFlags().String("output_dir", DefaultConfig.OutputDir, "Directory where the generated Rust project is written")
	rootCmd.PersistentFlags().String("projects_dir", DefaultConfig.ProjectsDir, "Directory where finished conversions are organized")
	rootCmd.PersistentFlags().Int("max_fix_attempts", DefaultConfig.MaxFixAttempts, "Maximum number of compile attempts before giving up")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	// AI Provider configuration
	rootCmd.PersistentFlags().String("provider", DefaultConfig.AIProviderConfig.Provider, "The name of the AI provider (e.g., 'gemini', 'ollama')")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.AIProviderConfig.BaseURL, "The base URL of AI Provider. Empty uses the provider's default endpoint.")
	rootCmd.PersistentFlags().String("model", DefaultConfig.AIProviderConfig.Model, "The name of the model used for code generation, such as 'gemini-2.5-pro'.")
	rootCmd.PersistentFlags().Float32("temperature", *DefaultConfig.AIProviderConfig.Temperature, "Adjusts the AI model's creativity (0-1). Low values keep conversions deterministic.")
	rootCmd.PersistentFlags().String("api_key", DefaultConfig.AIProviderConfig.ApiKey, "The API key used to authenticate with the AI service provider.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}

// LoadConfigWithCache loads configuration with caching support
func LoadConfigWithCache(rootCmd *cobra.Command, cwd string) *Config {
	var configFilePath string

	// Determine config file path
	if cfgFile != "" {
		configFilePath = cfgFile
	} else {
		// Check for default config files
		yamlPath := fmt.Sprintf("%s/oxidize-config.yaml", cwd)
		ymlPath := fmt.Sprintf("%s/oxidize-config.yml", cwd)
		jsonPath := fmt.Sprintf("%s/oxidize-config.json", cwd)

		if _, err := os.Stat(yamlPath); err == nil {
			configFilePath = yamlPath
		} else if _, err := os.Stat(ymlPath); err == nil {
			configFilePath = ymlPath
		} else if _, err := os.Stat(jsonPath); err == nil {
			configFilePath = jsonPath
		}
	}

	// If no config file exists, return default configuration loading
	if configFilePath == "" {
		return LoadConfigs(rootCmd, cwd)
	}

	// Check file modification time
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		// File doesn't exist or error, fallback to regular loading
		return LoadConfigs(rootCmd, cwd)
	}

	// Check cache first
	cacheMutex.RLock()
	if cached, exists := configCache[configFilePath]; exists {
		// Check if file has been modified since cache
		if fileInfo.ModTime().Equal(cached.modTime) {
			cacheMutex.RUnlock()
			return cached.config
		}
	}
	cacheMutex.RUnlock()

	// Load configuration normally
	config := LoadConfigs(rootCmd, cwd)

	// Update cache
	cacheMutex.Lock()
	configCache[configFilePath] = &configCacheEntry{
		config:  config,
		modTime: fileInfo.ModTime(),
	}
	cacheMutex.Unlock()

	return config
}

// ClearConfigCache clears all cached configuration files
func ClearConfigCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	configCache = make(map[string]*configCacheEntry)
}

// InvalidateConfigCache removes a specific config file from cache
func InvalidateConfigCache(configPath string) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	delete(configCache, configPath)
}
