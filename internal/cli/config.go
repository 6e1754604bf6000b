package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	maxWalkDepth = 25
)

// ConfigFileNames are tried in order in every directory during discovery.
var ConfigFileNames = []string{"minazuki.yaml", "minazuki.yml"}

// Config represents the minazuki configuration from minazuki.yaml.
type Config struct {
	// Schema is the path to the schema file.
	Schema string `mapstructure:"schema" json:"schema"`

	// Per-command configuration
	Generate GenerateConfig `mapstructure:"generate" json:"generate"`
	Doctor   DoctorConfig   `mapstructure:"doctor" json:"doctor"`
}

// GenerateConfig holds generation settings.
type GenerateConfig struct {
	Runtime   string `mapstructure:"runtime" json:"runtime"`
	Schema    string `mapstructure:"schema" json:"schema,omitempty"`
	Output    string `mapstructure:"output" json:"output"`
	Templates string `mapstructure:"templates" json:"templates"`
	Package   string `mapstructure:"package" json:"package"`
	IDPrefix  string `mapstructure:"id_prefix" json:"id_prefix"`
	Workers   int    `mapstructure:"workers" json:"workers"`
	Watch     bool   `mapstructure:"watch" json:"watch"`
	// Irregular holds extra singular -> plural pairs.
	Irregular map[string]string `mapstructure:"irregular" json:"irregular,omitempty"`
}

// DoctorConfig holds doctor command settings.
type DoctorConfig struct {
	Verbose bool `mapstructure:"verbose" json:"verbose"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	// 1. Set defaults first (lowest precedence)
	setDefaults(v)

	// 2. Environment variables: MINAZUKI_GENERATE_RUNTIME etc.
	v.SetEnvPrefix("MINAZUKI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "schema.yaml")

	v.SetDefault("generate.runtime", "go")
	v.SetDefault("generate.schema", "")
	v.SetDefault("generate.output", "")
	v.SetDefault("generate.templates", "templates")
	v.SetDefault("generate.package", "models")
	v.SetDefault("generate.id_prefix", "20342034")
	v.SetDefault("generate.workers", 0)
	v.SetDefault("generate.watch", false)

	v.SetDefault("doctor.verbose", false)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for minazuki.yaml or minazuki.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Check for repo boundary (.git file or directory)
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil // No config found, use defaults
}

// ResolvedSchema returns the effective schema path for generate,
// with generate.schema taking precedence over top-level schema.
func (c *Config) ResolvedSchema() string {
	if c.Generate.Schema != "" {
		return c.Generate.Schema
	}
	return c.Schema
}
