package config

import (
	"fmt"
	"path/filepath"

	"github.com/Norgate-AV/hgen/internal/tool"
	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultCoreModule    = "Core"
	DefaultGeneratorName = "HeaderGen"
)

// Holds the configuration options for hgen
type Config struct {
	// Root of the engine tree the generator tool lives under
	EngineRoot string

	// Path to the generator executable; derived from EngineRoot when empty
	GeneratorPath string

	// Path to the tool-build receipt; derived from EngineRoot when empty
	ReceiptPath string

	// Name of the module providing the generated-code baseline timestamp
	CoreModule string

	// Target name built when the generator tool needs rebuilding
	GeneratorTarget string

	// Read-only installed distribution mode and its protected root
	Installed     bool
	InstalledRoot string

	// Never rebuild the generator tool before running it
	SkipToolBuild bool

	// Regenerate regardless of staleness signals
	ForceRegenerate bool

	// Pass the fail-if-generated-code-changes flag to the generator
	FailOnGeneratedChange bool

	// Enable the directory-timestamp rescan heuristic
	FullRescan bool

	// Host build command invoked as `<command> <target>` to rebuild the
	// generator tool; tool self-build is skipped when empty
	BuildCommand string

	// Directory for the run-history database
	HistoryDir string

	// Enable verbose output
	Verbose bool
}

func Load() (*Config, error) {
	cfg := &Config{
		EngineRoot:            viper.GetString("engine_root"),
		GeneratorPath:         viper.GetString("generator_path"),
		ReceiptPath:           viper.GetString("receipt_path"),
		CoreModule:            viper.GetString("core_module"),
		GeneratorTarget:       viper.GetString("generator_target"),
		Installed:             viper.GetBool("installed"),
		InstalledRoot:         viper.GetString("installed_root"),
		SkipToolBuild:         viper.GetBool("skip_tool_build"),
		ForceRegenerate:       viper.GetBool("force_regenerate"),
		FailOnGeneratedChange: viper.GetBool("fail_on_generated_change"),
		FullRescan:            viper.GetBool("full_rescan"),
		BuildCommand:          viper.GetString("build_command"),
		HistoryDir:            viper.GetString("history_dir"),
		Verbose:               viper.GetBool("verbose"),
	}

	if cfg.CoreModule == "" {
		cfg.CoreModule = DefaultCoreModule
	}

	if cfg.GeneratorTarget == "" {
		cfg.GeneratorTarget = DefaultGeneratorName
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.EngineRoot == "" {
		return fmt.Errorf("engine root not specified")
	}

	abs, err := filepath.Abs(c.EngineRoot)
	if err != nil {
		return fmt.Errorf("invalid engine root: %v", err)
	}

	c.EngineRoot = abs

	if c.GeneratorPath == "" {
		c.GeneratorPath = filepath.Join(c.EngineRoot, "Binaries", DefaultGeneratorName+tool.BinaryExt())
	} else if abs, err := filepath.Abs(c.GeneratorPath); err == nil {
		c.GeneratorPath = abs
	}

	if c.ReceiptPath == "" {
		c.ReceiptPath = filepath.Join(c.EngineRoot, "Binaries", DefaultGeneratorName+".receipt.json")
	} else if abs, err := filepath.Abs(c.ReceiptPath); err == nil {
		c.ReceiptPath = abs
	}

	if c.Installed {
		if c.InstalledRoot == "" {
			c.InstalledRoot = c.EngineRoot
		} else if abs, err := filepath.Abs(c.InstalledRoot); err == nil {
			c.InstalledRoot = abs
		}
	}

	return nil
}
