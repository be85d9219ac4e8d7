package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllHeadersOrder(t *testing.T) {
	d := &Descriptor{
		ClassesHeaders: []string{"/src/Classes/A.h"},
		PublicHeaders:  []string{"/src/Public/B.h", "/src/Public/C.h"},
		PrivateHeaders: []string{"/src/Private/D.h"},
	}

	// classes, then public, then private; fingerprints depend on this order
	assert.Equal(t, []string{
		"/src/Classes/A.h",
		"/src/Public/B.h",
		"/src/Public/C.h",
		"/src/Private/D.h",
	}, d.AllHeaders())
}

func TestGeneratedDir(t *testing.T) {
	d := &Descriptor{GeneratedOutputBase: filepath.Join("/out", "Core", "Core")}
	assert.Equal(t, filepath.Join("/out", "Core"), d.GeneratedDir())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "game", KindGame.String())
	assert.Equal(t, "engine", KindEngine.String())
	assert.Equal(t, "plugin", KindPlugin.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func writeInput(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "modules.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadInput(t *testing.T) {
	path := writeInput(t, `{
		"target": {"name": "MyGame", "isGame": true},
		"modules": [
			{
				"name": "Core",
				"moduleKind": "engine",
				"publicHeaders": ["/engine/Core/Public/Core.h"],
				"generatedOutputBase": "/out/Core/Core",
				"codeGenVersion": 1
			},
			{
				"name": "Game",
				"moduleKind": "game",
				"publicHeaders": ["/project/Game/Public/Game.h"],
				"generatedOutputBase": "/out/Game/Game"
			}
		]
	}`)

	input, err := LoadInput(path)
	require.NoError(t, err)
	assert.Equal(t, "MyGame", input.Target.Name)
	assert.True(t, input.Target.IsGame)

	modules, err := input.Descriptors()
	require.NoError(t, err)
	require.Len(t, modules, 2)

	assert.Equal(t, KindEngine, modules[0].Kind)
	assert.Equal(t, CodeGenV1, modules[0].CodeGenVersion)

	// Version defaults to latest when omitted
	assert.Equal(t, CodeGenLatest, modules[1].CodeGenVersion)
}

func TestLoadInputValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed json",
			content: `{not json`,
			wantErr: "failed to parse",
		},
		{
			name:    "missing target name",
			content: `{"target": {}, "modules": []}`,
			wantErr: "no target name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadInput(writeInput(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDescriptorsRejectSharedGeneratedDir(t *testing.T) {
	input := &Input{
		Target: TargetInput{Name: "MyGame"},
		Modules: []ModuleInput{
			{Name: "A", GeneratedOutputBase: "/out/Shared/A"},
			{Name: "B", GeneratedOutputBase: "/out/Shared/B"},
		},
	}

	_, err := input.Descriptors()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share generated-code directory")
}

func TestDescriptorsRequireOutputBase(t *testing.T) {
	input := &Input{
		Target:  TargetInput{Name: "MyGame"},
		Modules: []ModuleInput{{Name: "A"}},
	}

	_, err := input.Descriptors()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generated output base")
}
