// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port          int `mapstructure:"port"`
	SweepInterval int `mapstructure:"sweep_interval"` // minutes between cohesion sweeps
	Database      struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	World struct {
		ExportPath    string `mapstructure:"export_path"`    // directory the simulator drops snapshots into
		SchemaVersion string `mapstructure:"schema_version"` // semver constraint for accepted snapshots
	} `mapstructure:"world"`
	LLM struct {
		APIKey      string  `mapstructure:"api_key"`
		Model       string  `mapstructure:"model"`
		ImageModel  string  `mapstructure:"image_model"`
		Temperature float64 `mapstructure:"temperature"`
		MaxTokens   int     `mapstructure:"max_tokens"`
		BatchSize   int     `mapstructure:"batch_size"` // items dispatched concurrently per batch
	} `mapstructure:"llm"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with an "ILLUM_" prefix.
	// e.g., ILLUM_DATABASE_PATH will override the `database.path` key.
	viper.SetEnvPrefix("ILLUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("sweep_interval", 60)
	viper.SetDefault("database.path", "./illuminator.db")
	viper.SetDefault("world.export_path", "./world-exports")
	viper.SetDefault("world.schema_version", ">= 1.0.0, < 2.0.0")
	viper.SetDefault("llm.model", "gemini-2.0-flash")
	viper.SetDefault("llm.image_model", "imagen-3.0-generate-002")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 2048)
	viper.SetDefault("llm.batch_size", 1)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
