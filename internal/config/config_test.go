package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/hgen/internal/tool"
)

func TestValidateRequiresEngineRoot(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine root")
}

func TestValidateDerivesToolPaths(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{EngineRoot: root}

	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(root, "Binaries", DefaultGeneratorName+tool.BinaryExt()), cfg.GeneratorPath)
	assert.Equal(t, filepath.Join(root, "Binaries", DefaultGeneratorName+".receipt.json"), cfg.ReceiptPath)
}

func TestValidateKeepsExplicitPaths(t *testing.T) {
	root := t.TempDir()
	gen := filepath.Join(root, "custom", "gen")

	cfg := &Config{
		EngineRoot:    root,
		GeneratorPath: gen,
		ReceiptPath:   gen + ".json",
	}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, gen, cfg.GeneratorPath)
	assert.Equal(t, gen+".json", cfg.ReceiptPath)
}

func TestValidateInstalledRootDefaultsToEngineRoot(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{EngineRoot: root, Installed: true}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, root, cfg.InstalledRoot)
}

func TestLoadAppliesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := t.TempDir()
	viper.Set("engine_root", root)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultCoreModule, cfg.CoreModule)
	assert.Equal(t, DefaultGeneratorName, cfg.GeneratorTarget)
	assert.False(t, cfg.Installed)
	assert.False(t, cfg.ForceRegenerate)
}

func TestLoadReadsViperKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := t.TempDir()
	viper.Set("engine_root", root)
	viper.Set("core_module", "CoreUObject")
	viper.Set("installed", true)
	viper.Set("installed_root", root)
	viper.Set("force_regenerate", true)
	viper.Set("build_command", "/usr/bin/make")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "CoreUObject", cfg.CoreModule)
	assert.True(t, cfg.Installed)
	assert.True(t, cfg.ForceRegenerate)
	assert.Equal(t, "/usr/bin/make", cfg.BuildCommand)
}
