// Package module defines the descriptor for one compilation module's
// code-generation inputs and outputs. Descriptors are owned by the build
// target abstraction; this engine only reads them, except for caching a
// lazily resolved precompiled header path.
package module

import "path/filepath"

// Kind categorises where a module lives in the build tree.
type Kind int

const (
	KindGame Kind = iota
	KindEngine
	KindPlugin
)

func (k Kind) String() string {
	switch k {
	case KindGame:
		return "game"
	case KindEngine:
		return "engine"
	case KindPlugin:
		return "plugin"
	}

	return "unknown"
}

// CodeGenVersion is the generated-code schema version. Values are part of
// the manifest contract with the generator and must not be renumbered.
type CodeGenVersion int

const (
	CodeGenNone CodeGenVersion = 0
	CodeGenV1   CodeGenVersion = 1
	CodeGenV2   CodeGenVersion = 2

	// CodeGenLatest is the default for modules that do not pin a version.
	CodeGenLatest = CodeGenV2
)

// Descriptor describes one module's generation inputs and outputs.
type Descriptor struct {
	// Name is unique per build target
	Name string

	// RootDirectory is the module's source root
	RootDirectory string

	Kind Kind

	// Header paths partitioned by discovered role. Order is significant:
	// fingerprints are compared positionally in classes+public+private order.
	ClassesHeaders []string
	PublicHeaders  []string
	PrivateHeaders []string

	// PrecompiledHeaderPath may be empty; it is resolved lazily before
	// generation and cached back onto the descriptor.
	PrecompiledHeaderPath string

	// GeneratedOutputBase is the path stem for generated artifacts. Its
	// containing directory is the module's generated-code directory and is
	// unique per module.
	GeneratedOutputBase string

	CodeGenVersion CodeGenVersion
}

// GeneratedDir returns the module's generated-code directory.
func (d *Descriptor) GeneratedDir() string {
	return filepath.Dir(d.GeneratedOutputBase)
}

// AllHeaders returns the module's headers concatenated in the fingerprint
// order: classes, then public, then private.
func (d *Descriptor) AllHeaders() []string {
	headers := make([]string, 0, len(d.ClassesHeaders)+len(d.PublicHeaders)+len(d.PrivateHeaders))
	headers = append(headers, d.ClassesHeaders...)
	headers = append(headers, d.PublicHeaders...)
	headers = append(headers, d.PrivateHeaders...)

	return headers
}
