package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/fieldmatch/internal/config"
	"github.com/agentstation/fieldmatch/pkg/constants"
)

// EnvPrefix prefixes every environment variable read through Viper.
const EnvPrefix = "FIELDMATCH"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files. Engine
// settings are read from Viper when a client is built, after command flags
// have been bound.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (FIELDMATCH_ prefix)
// 3. .env files
// 4. Config file (./.fieldmatch.yaml or ~/.fieldmatch.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	bindAPIKeys()
	viper.SetDefault(config.KeyEmbedder, config.EmbedderNGram)
	viper.SetDefault(config.KeyJoinKey, constants.DefaultJoinKey)

	if err := readConfigFile(viper.GetString("config")); err != nil {
		return nil, err
	}

	return &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no_color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}, nil
}

// readConfigFile reads an explicit config file, or searches the working
// directory and the home directory. A missing search result is not an error.
func readConfigFile(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
		return viper.ReadInConfig()
	}

	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigType("yaml")
	viper.SetConfigName(".fieldmatch")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first so its values win over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// bindAPIKeys binds the unprefixed credential variables to Viper.
func bindAPIKeys() {
	keys := append(append([]string{}, config.APIKeyNames...), config.EnvProject, config.EnvLocation)
	for _, key := range keys {
		_ = viper.BindEnv(key, key)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
