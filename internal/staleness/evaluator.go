// Package staleness decides whether generated code must be rebuilt.
//
// The evaluator is deliberately conservative: it reconciles several
// independent signals (tool timestamp, shared baseline timestamp, per-header
// timestamps, fingerprint content, directory timestamps) and reports stale
// on the first positive one. A false "up to date" verdict ships stale
// generated code; a false "stale" verdict only costs build time.
package staleness

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Norgate-AV/hgen/internal/fingerprint"
	"github.com/Norgate-AV/hgen/internal/fsmeta"
	"github.com/Norgate-AV/hgen/internal/module"
)

// neverGenerated stands in for the timestamp of a generated file that does
// not exist yet. Far enough in the future that every comparison against it
// reports stale.
var neverGenerated = time.Unix(1<<40, 0)

// Evaluator computes the per-module and overall staleness verdict.
type Evaluator struct {
	Store *fingerprint.Store
	Meta  *fsmeta.Cache

	// CoreModuleName names the module whose generated artifact provides the
	// shared baseline timestamp. Its absence is a configuration error.
	CoreModuleName string

	// Installed marks a read-only installed distribution. Modules under
	// InstalledRoot are trusted as pre-generated and skipped entirely.
	Installed     bool
	InstalledRoot string

	// FullRescan enables the directory-timestamp heuristic that catches
	// headers added or removed without being individually tracked yet. The
	// signal is best-effort: directory mtime semantics vary by filesystem.
	FullRescan bool

	Logger *slog.Logger
}

func (e *Evaluator) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}

	return slog.Default()
}

// IsStale reports whether any module in the set needs regeneration, given
// the generator tool's effective build timestamp. It short-circuits on the
// first stale module.
func (e *Evaluator) IsStale(modules []*module.Descriptor, toolTimestamp time.Time) (bool, error) {
	coreTimestamp, err := e.coreTimestamp(modules)
	if err != nil {
		return false, err
	}

	for _, mod := range modules {
		if e.protected(mod) {
			continue
		}

		stale, reason := e.moduleStale(mod, toolTimestamp, coreTimestamp)
		if stale {
			e.logger().Debug("module requires code generation",
				slog.String("module", mod.Name),
				slog.String("reason", reason))
			return true, nil
		}
	}

	return false, nil
}

// coreTimestamp computes the shared baseline: the last-write time of the
// core module's primary generated file. In installed mode the baseline never
// forces staleness on its own; outside it, a missing file does.
func (e *Evaluator) coreTimestamp(modules []*module.Descriptor) (time.Time, error) {
	var core *module.Descriptor
	for _, mod := range modules {
		if mod.Name == e.CoreModuleName {
			core = mod
			break
		}
	}

	if core == nil {
		return time.Time{}, fmt.Errorf("core module %q not found in module set; it is required as the generated-code baseline", e.CoreModuleName)
	}

	if e.Installed {
		return time.Time{}, nil
	}

	primary := core.GeneratedOutputBase + ".generated.h"
	modTime, ok := e.Meta.ModTime(primary)
	if !ok {
		return neverGenerated, nil
	}

	return modTime, nil
}

// protected reports whether a module lives under the read-only installed
// root: no staleness checks, no fingerprint writes.
func (e *Evaluator) protected(mod *module.Descriptor) bool {
	if !e.Installed || e.InstalledRoot == "" {
		return false
	}

	root := strings.ToLower(filepath.Clean(e.InstalledRoot)) + string(filepath.Separator)
	dir := strings.ToLower(filepath.Clean(mod.RootDirectory)) + string(filepath.Separator)

	return strings.HasPrefix(dir, root)
}

// moduleStale evaluates one module's staleness signals in order, returning
// the first positive one with a diagnostic reason.
func (e *Evaluator) moduleStale(mod *module.Descriptor, toolTimestamp, coreTimestamp time.Time) (bool, string) {
	generatedDir := mod.GeneratedDir()

	if _, err := os.Stat(generatedDir); err != nil {
		return true, "generated-code directory missing"
	}

	record, err := e.Store.Read(generatedDir)
	if err != nil || record == nil {
		return true, "no previous fingerprint"
	}

	if toolTimestamp.After(record.ModTime) {
		return true, "generator tool newer than fingerprint"
	}

	if coreTimestamp.After(record.ModTime) {
		return true, "generated-code baseline newer than fingerprint"
	}

	headers := mod.AllHeaders()
	if !record.Matches(headers) {
		return true, "header set changed since last run"
	}

	for _, header := range headers {
		modTime, ok := e.Meta.ModTime(header)
		if !ok || modTime.After(record.ModTime) {
			return true, fmt.Sprintf("header modified: %s", header)
		}
	}

	if e.FullRescan {
		if dir, stale := e.directoriesStale(headers, record.ModTime); stale {
			return true, fmt.Sprintf("header directory modified: %s", dir)
		}
	}

	return false, ""
}

// directoriesStale checks the containing directory of every known header
// against the fingerprint time. A newer directory suggests files were added
// or removed without being tracked yet.
func (e *Evaluator) directoriesStale(headers []string, baseline time.Time) (string, bool) {
	seen := make(map[string]struct{})

	for _, header := range headers {
		dir := filepath.Dir(header)
		if _, ok := seen[dir]; ok {
			continue
		}

		seen[dir] = struct{}{}

		modTime, ok := e.Meta.ModTime(dir)
		if ok && modTime.After(baseline) {
			return dir, true
		}
	}

	return "", false
}

// Protected exposes the installed-root skip decision so the orchestrator
// applies the same rule when writing fingerprints.
func (e *Evaluator) Protected(mod *module.Descriptor) bool {
	return e.protected(mod)
}
