package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForGenerate loads configuration for a generation run. Precedence is
// defaults, then global config, then local config found near the engine
// root, then command flags.
func (l *Loader) LoadForGenerate(cmd *cobra.Command) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig()
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("core_module", DefaultCoreModule)
	viper.SetDefault("generator_target", DefaultGeneratorName)
	viper.SetDefault("full_rescan", true)
	viper.SetDefault("verbose", false)
}

// loadGlobalConfig loads global configuration from APPDATA or
// XDG_CONFIG_HOME
func (l *Loader) loadGlobalConfig() {
	globalDir := ""
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		globalDir = filepath.Join(appdata, "hgen")
	} else if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		globalDir = filepath.Join(xdg, "hgen")
	} else if home, err := os.UserHomeDir(); err == nil {
		globalDir = filepath.Join(home, ".config", "hgen")
	}

	if globalDir == "" {
		return
	}

	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig loads local configuration by walking up from the engine
// root (or the working directory when no root is set yet)
func (l *Loader) loadLocalConfig() {
	dir := viper.GetString("engine_root")
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return
		}

		dir = cwd
	}

	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	localPath := FindLocalConfig(dir)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.ReadInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("engine_root", cmd.Flags().Lookup("engine-root"))
	_ = viper.BindPFlag("generator_path", cmd.Flags().Lookup("generator-path"))
	_ = viper.BindPFlag("core_module", cmd.Flags().Lookup("core-module"))
	_ = viper.BindPFlag("installed", cmd.Flags().Lookup("installed"))
	_ = viper.BindPFlag("installed_root", cmd.Flags().Lookup("installed-root"))
	_ = viper.BindPFlag("skip_tool_build", cmd.Flags().Lookup("skip-tool-build"))
	_ = viper.BindPFlag("force_regenerate", cmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("fail_on_generated_change", cmd.Flags().Lookup("fail-on-change"))
	_ = viper.BindPFlag("full_rescan", cmd.Flags().Lookup("full-rescan"))
	_ = viper.BindPFlag("build_command", cmd.Flags().Lookup("build-command"))
	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
}
