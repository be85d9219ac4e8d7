// Package tool decides whether the generator tool's own binaries are
// present and internally consistent, and computes their effective build
// timestamp. The check fails closed: no receipt, a missing binary, or a
// version mismatch between dynamic libraries all mean "never built", which
// forces the orchestrator to rebuild the tool before generating.
package tool

import (
	"log/slog"
	"os"
	"time"
)

// NeverBuilt is the effective timestamp of an invalid toolset. It is far
// enough in the future that any staleness comparison against it reports
// stale.
var NeverBuilt = time.Unix(1<<40, 0)

// Checker validates the generator toolset described by a build receipt.
type Checker struct {
	// ReceiptPath locates the tool-build receipt on disk
	ReceiptPath string

	// Expand rewrites path placeholders found in the receipt
	Expand func(string) string

	// LibraryVersion probes the version integer embedded in a dynamic
	// library. Injected so tests and platforms can vary the mechanism.
	LibraryVersion func(path string) (int, error)

	Logger *slog.Logger
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return slog.Default()
}

// Check reports whether the generator toolset is valid and, when it is,
// the latest last-write time across its binaries. When invalid, the
// returned timestamp is NeverBuilt.
//
// A version mismatch between dynamic libraries indicates a half-updated
// toolset; every such library is deleted so the rebuild starts clean.
func (c *Checker) Check() (bool, time.Time) {
	log := c.logger()

	receipt, err := ReadReceipt(c.ReceiptPath)
	if err != nil {
		log.Warn("generator tool receipt unavailable, tool treated as never built",
			slog.String("receipt", c.ReceiptPath),
			slog.String("error", err.Error()))
		return false, NeverBuilt
	}

	if c.Expand != nil {
		receipt.Expand(c.Expand)
	}

	var latest time.Time
	var libraries []Product

	for _, product := range receipt.Products {
		if product.Kind != KindExecutable && product.Kind != KindDynamicLibrary {
			continue
		}

		info, err := os.Stat(product.Path)
		if err != nil {
			log.Warn("generator tool binary missing",
				slog.String("path", product.Path))
			return false, NeverBuilt
		}

		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}

		if product.Kind == KindDynamicLibrary {
			libraries = append(libraries, product)
		}
	}

	if !c.librariesConsistent(libraries) {
		return false, NeverBuilt
	}

	return true, latest
}

// librariesConsistent verifies every dynamic library carries the same
// embedded version. On mismatch all libraries are removed as a corrective
// side effect and false is returned.
func (c *Checker) librariesConsistent(libraries []Product) bool {
	if len(libraries) == 0 || c.LibraryVersion == nil {
		return true
	}

	log := c.logger()

	versions := make(map[string]int, len(libraries))
	mismatch := false
	first := 0

	for i, lib := range libraries {
		version, err := c.LibraryVersion(lib.Path)
		if err != nil {
			log.Warn("cannot read generator library version",
				slog.String("path", lib.Path),
				slog.String("error", err.Error()))
			return false
		}

		versions[lib.Path] = version

		if i == 0 {
			first = version
		} else if version != first {
			mismatch = true
		}
	}

	if !mismatch {
		return true
	}

	log.Warn("generator tool libraries disagree in version, removing them to force a clean rebuild")

	for _, lib := range libraries {
		log.Warn("removing mismatched generator library",
			slog.String("path", lib.Path),
			slog.Int("version", versions[lib.Path]))

		if err := os.Remove(lib.Path); err != nil {
			log.Warn("failed to remove mismatched library",
				slog.String("path", lib.Path),
				slog.String("error", err.Error()))
		}
	}

	return false
}
