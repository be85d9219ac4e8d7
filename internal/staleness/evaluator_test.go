package staleness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/hgen/internal/fingerprint"
	"github.com/Norgate-AV/hgen/internal/fsmeta"
	"github.com/Norgate-AV/hgen/internal/module"
)

var (
	past   = time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	future = time.Now().Add(1 * time.Hour).Truncate(time.Second)
)

// writeModule lays out one module on disk: a public header, a generated
// directory with the primary generated file, and a fingerprint, all dated
// in the past except the fingerprint (written now).
func writeModule(t *testing.T, root, name string) *module.Descriptor {
	t.Helper()

	moduleDir := filepath.Join(root, name)
	headerDir := filepath.Join(moduleDir, "Public")
	generatedDir := filepath.Join(root, "Intermediate", name)

	require.NoError(t, os.MkdirAll(headerDir, 0o755))
	require.NoError(t, os.MkdirAll(generatedDir, 0o755))

	header := filepath.Join(headerDir, name+".h")
	require.NoError(t, os.WriteFile(header, []byte("#pragma once"), 0o644))
	require.NoError(t, os.Chtimes(header, past, past))
	require.NoError(t, os.Chtimes(headerDir, past, past))

	base := filepath.Join(generatedDir, name)
	primary := base + ".generated.h"
	require.NoError(t, os.WriteFile(primary, []byte("// generated"), 0o644))
	require.NoError(t, os.Chtimes(primary, past, past))

	d := &module.Descriptor{
		Name:                name,
		RootDirectory:       moduleDir,
		Kind:                module.KindEngine,
		PublicHeaders:       []string{header},
		GeneratedOutputBase: base,
		CodeGenVersion:      module.CodeGenLatest,
	}

	store := fingerprint.NewStore()
	require.NoError(t, store.Write(generatedDir, d.AllHeaders()))

	return d
}

func newEvaluator() *Evaluator {
	return &Evaluator{
		Store:          fingerprint.NewStore(),
		Meta:           fsmeta.NewCache(),
		CoreModuleName: "Core",
	}
}

func TestMissingCoreModuleIsFatal(t *testing.T) {
	root := t.TempDir()
	game := writeModule(t, root, "Game")

	_, err := newEvaluator().IsStale([]*module.Descriptor{game}, past)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Core")
}

func TestUpToDateSet(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	stale, err := newEvaluator().IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestMissingGeneratedDirIsStale(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	require.NoError(t, os.RemoveAll(game.GeneratedDir()))

	stale, err := newEvaluator().IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestMissingFingerprintIsStale(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	require.NoError(t, os.Remove(filepath.Join(game.GeneratedDir(), fingerprint.FileName)))

	stale, err := newEvaluator().IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestNewerToolTimestampIsStale(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	// No headers changed, only the tool advanced: every module is stale
	stale, err := newEvaluator().IsStale([]*module.Descriptor{core, game}, future)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestNewerBaselineIsStale(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	primary := core.GeneratedOutputBase + ".generated.h"
	require.NoError(t, os.Chtimes(primary, future, future))

	stale, err := newEvaluator().IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestMissingBaselineIsStale(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")

	require.NoError(t, os.Remove(core.GeneratedOutputBase+".generated.h"))

	stale, err := newEvaluator().IsStale([]*module.Descriptor{core}, past)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestReorderedHeadersAreStale(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	// Same membership, different order than the recorded fingerprint
	second := filepath.Join(game.RootDirectory, "Public", "Other.h")
	require.NoError(t, os.WriteFile(second, []byte("#pragma once"), 0o644))
	require.NoError(t, os.Chtimes(second, past, past))

	store := fingerprint.NewStore()
	require.NoError(t, store.Write(game.GeneratedDir(), []string{second, game.PublicHeaders[0]}))

	game.PublicHeaders = []string{game.PublicHeaders[0], second}

	stale, err := newEvaluator().IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestAddedHeaderIsStale(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	added := filepath.Join(game.RootDirectory, "Public", "Added.h")
	require.NoError(t, os.WriteFile(added, []byte("#pragma once"), 0o644))
	require.NoError(t, os.Chtimes(added, past, past))

	game.PublicHeaders = append(game.PublicHeaders, added)

	stale, err := newEvaluator().IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestModifiedHeaderIsStale(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	require.NoError(t, os.Chtimes(game.PublicHeaders[0], future, future))

	stale, err := newEvaluator().IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestFullRescanDirectoryTimestamp(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	headerDir := filepath.Dir(game.PublicHeaders[0])
	require.NoError(t, os.Chtimes(headerDir, future, future))

	// Off in replay mode
	stale, err := newEvaluator().IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.False(t, stale)

	// On in full-rescan mode
	e := newEvaluator()
	e.FullRescan = true

	stale, err = e.IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestProtectedModuleIsSkipped(t *testing.T) {
	root := t.TempDir()
	core := writeModule(t, root, "Core")
	game := writeModule(t, root, "Game")

	// Everything about the game module screams stale
	require.NoError(t, os.RemoveAll(game.GeneratedDir()))
	require.NoError(t, os.Chtimes(game.PublicHeaders[0], future, future))

	e := newEvaluator()
	e.Installed = true
	e.InstalledRoot = root

	// In installed mode the baseline never forces staleness and protected
	// modules are trusted as pre-generated
	stale, err := e.IsStale([]*module.Descriptor{core, game}, past)
	require.NoError(t, err)
	assert.False(t, stale)

	assert.True(t, e.Protected(game))
	assert.True(t, e.Protected(core))
}

func TestInstalledRootPrefixMatching(t *testing.T) {
	e := newEvaluator()
	e.Installed = true
	e.InstalledRoot = filepath.Join("/", "opt", "engine")

	inside := &module.Descriptor{RootDirectory: filepath.Join("/", "opt", "engine", "Core")}
	sibling := &module.Descriptor{RootDirectory: filepath.Join("/", "opt", "engine-extras", "Core")}

	assert.True(t, e.Protected(inside))
	assert.False(t, e.Protected(sibling), "a sibling directory sharing the prefix string is not protected")
}
