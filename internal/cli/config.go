package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/clausematrix/internal/model"
)

// Clause keys such as "2.1" appear as map keys in the config, so the usual
// "." key delimiter would split them into nested settings.
const keyDelimiter = "::"

const envPrefix = "CLAUSEMATRIX"

// newSettings creates a viper instance seeded with the default configuration.
// Defaults are registered per field so CLAUSEMATRIX_* variables can override them.
func newSettings() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	defaults, err := configMap(model.DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("encode default config: %v", err))
	}
	for section, value := range defaults {
		fields, ok := value.(map[string]interface{})
		if !ok {
			v.SetDefault(section, value)
			continue
		}
		for field, fv := range fields {
			v.SetDefault(section+keyDelimiter+field, fv)
		}
	}
	return v
}

// configMap renders a config through its yaml tags
func configMap(c *model.Config) (map[string]interface{}, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// readConfig loads the config file (explicit path, or ~/.clausematrix/config.yaml
// when present) and returns the merged configuration and the file used.
func readConfig(v *viper.Viper, path string) (*model.Config, string, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := configDir()
		if err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
	}

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(home, ".clausematrix"), nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage clausematrix configuration",
	Long: `Manage clausematrix configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLAUSEMATRIX_*, e.g. CLAUSEMATRIX_LOG_LEVEL)
3. Config file (~/.clausematrix/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, the config file, environment variables and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if used := settings.ConfigFileUsed(); used != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", used)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(yamlData)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.clausematrix/config.yaml with every available option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir()
		if err != nil {
			return err
		}
		configPath, err := writeDefaultConfig(dir)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  clausematrix config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n\n", configPath)
		return nil
	},
}

// writeDefaultConfig writes config.yaml into dir, refusing to overwrite
func writeDefaultConfig(dir string) (string, error) {
	configPath := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s\nUse 'clausematrix config show' to view it, or delete it first to recreate", configPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("error marshaling config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# clausematrix configuration\n")
	sb.WriteString("#\n")
	sb.WriteString("# Configuration hierarchy (highest to lowest priority):\n")
	sb.WriteString("#   1. CLI flags\n")
	sb.WriteString("#   2. Environment variables (CLAUSEMATRIX_*)\n")
	sb.WriteString("#   3. This config file\n")
	sb.WriteString("#   4. Built-in defaults\n")
	sb.WriteString("#\n")
	sb.WriteString("# analysis.clause_severity maps clause keys (\"2.1\") to high, medium or low;\n")
	sb.WriteString("# analysis.title_severity matches fragments of clause titles.\n\n")
	sb.Write(yamlData)

	if err := os.WriteFile(configPath, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("error writing config: %w", err)
	}
	return configPath, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
