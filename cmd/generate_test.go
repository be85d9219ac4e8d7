package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCommandRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["generate"])
	assert.True(t, names["history"])
	assert.True(t, names["clean"])
}

func TestGenerateRequiresModuleSetArgument(t *testing.T) {
	err := generateCmd.Args(generateCmd, []string{})
	require.Error(t, err)

	err = generateCmd.Args(generateCmd, []string{"modules.json"})
	assert.NoError(t, err)

	err = generateCmd.Args(generateCmd, []string{"a.json", "b.json"})
	assert.Error(t, err)
}

func TestPersistentFlagsExist(t *testing.T) {
	for _, name := range []string{
		"engine-root",
		"generator-path",
		"core-module",
		"installed",
		"installed-root",
		"skip-tool-build",
		"force",
		"fail-on-change",
		"full-rescan",
		"build-command",
		"verbose",
	} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing flag %s", name)
	}
}
