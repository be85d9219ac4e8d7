// Package manifest builds the generation request handed to the external
// generator process.
//
// The manifest is a plain data projection of the module descriptors: the
// JSON written to disk carries no type discriminators, so the consuming
// tool can deserialize it without knowledge of this side's type system.
// Once built, a manifest is never mutated.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Norgate-AV/hgen/internal/module"
)

// Module is the per-module projection sent to the generator.
type Module struct {
	Name          string `json:"name"`
	ModuleKind    string `json:"moduleKind"`
	BaseDirectory string `json:"baseDirectory"`

	// Header lists keep descriptor order; the generator relies on it.
	ClassesHeaders []string `json:"classesHeaders"`
	PublicHeaders  []string `json:"publicHeaders"`
	PrivateHeaders []string `json:"privateHeaders"`

	PrecompiledHeader   string `json:"precompiledHeader"`
	GeneratedOutputBase string `json:"generatedOutputBase"`

	// SaveExportedHeaders is false for modules under a read-only installed
	// root, where the generator must not write exported headers back.
	SaveExportedHeaders bool `json:"saveExportedHeaders"`

	GeneratedCodeVersion int `json:"generatedCodeVersion"`
}

// Manifest is one generation request: target metadata plus the ordered
// module projections.
type Manifest struct {
	TargetName     string   `json:"targetName"`
	IsGameTarget   bool     `json:"isGameTarget"`
	RootLocalPath  string   `json:"rootLocalPath"`
	RootRemotePath string   `json:"rootRemotePath"`
	Modules        []Module `json:"modules"`
}

// Target carries the build-target metadata projected into the manifest.
type Target struct {
	Name       string
	IsGame     bool
	LocalRoot  string
	RemoteRoot string
}

// Build projects the descriptors into a manifest. Pure: no I/O, descriptor
// order preserved. saveExported decides the exported-headers policy per
// module (false under a protected installed root).
func Build(target Target, modules []*module.Descriptor, saveExported func(*module.Descriptor) bool) *Manifest {
	m := &Manifest{
		TargetName:     target.Name,
		IsGameTarget:   target.IsGame,
		RootLocalPath:  target.LocalRoot,
		RootRemotePath: target.RemoteRoot,
		Modules:        make([]Module, 0, len(modules)),
	}

	for _, mod := range modules {
		m.Modules = append(m.Modules, Module{
			Name:                 mod.Name,
			ModuleKind:           mod.Kind.String(),
			BaseDirectory:        mod.RootDirectory,
			ClassesHeaders:       copyPaths(mod.ClassesHeaders),
			PublicHeaders:        copyPaths(mod.PublicHeaders),
			PrivateHeaders:       copyPaths(mod.PrivateHeaders),
			PrecompiledHeader:    mod.PrecompiledHeaderPath,
			GeneratedOutputBase:  mod.GeneratedOutputBase,
			SaveExportedHeaders:  saveExported(mod),
			GeneratedCodeVersion: int(mod.CodeGenVersion),
		})
	}

	return m
}

// WriteFile serializes the manifest as indented JSON at the given path.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}

	return nil
}

func copyPaths(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)

	return out
}
