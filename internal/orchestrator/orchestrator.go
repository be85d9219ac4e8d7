// Package orchestrator ties the code-generation engine together: it checks
// the generator tool, evaluates staleness, optionally rebuilds the tool,
// writes the manifest, runs the generator, and commits new fingerprints.
package orchestrator

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Norgate-AV/hgen/internal/codes"
	"github.com/Norgate-AV/hgen/internal/fingerprint"
	"github.com/Norgate-AV/hgen/internal/fsmeta"
	"github.com/Norgate-AV/hgen/internal/history"
	"github.com/Norgate-AV/hgen/internal/manifest"
	"github.com/Norgate-AV/hgen/internal/module"
	"github.com/Norgate-AV/hgen/internal/runner"
	"github.com/Norgate-AV/hgen/internal/staleness"
	"github.com/Norgate-AV/hgen/internal/tool"
)

// Phase distinguishes a full "gather" build pass, which rescans and caches
// discovery results, from a fast "assemble" pass that replays known inputs.
type Phase int

const (
	PhaseGather Phase = iota
	PhaseAssemble
)

// Target identifies the build target one orchestration run serves.
type Target struct {
	Name string

	// ProjectFile, when present, is passed to the generator as the
	// compilation-unit identifier instead of the target name.
	ProjectFile string

	IsGame bool

	// IsGeneratorTool guards against recursion: when the target being built
	// is the generator itself, no self-build or generation happens.
	IsGeneratorTool bool

	LocalRoot  string
	RemoteRoot string
}

// Options are the policy knobs for one orchestration run.
type Options struct {
	// GeneratorPath is the resolved generator executable
	GeneratorPath string

	// GeneratorTargetName is the target built when the tool needs rebuilding
	GeneratorTargetName string

	ForceRegenerate bool
	SkipToolBuild   bool

	// HotReload suppresses the tool self-build during IDE-driven reloads
	HotReload bool

	Installed bool

	FailOnGeneratedChange bool

	Phase Phase
}

// Orchestrator runs the generation state machine. It is not re-entrant for
// the same target; callers must serialize concurrent builds of a target
// externally.
type Orchestrator struct {
	Checker      *tool.Checker
	Evaluator    *staleness.Evaluator
	Fingerprints *fingerprint.Store
	Meta         *fsmeta.Cache
	Runner       *runner.Runner

	// History is optional; recording failures never fail the build
	History *history.Store

	// BuildTarget re-enters the host build system to build a named target.
	// Required unless SkipToolBuild, Installed, or HotReload applies.
	BuildTarget func(name string) error

	// PostSync mirrors generated files to a remote build host after a run
	PostSync func(m *manifest.Manifest) error

	// ResolvePCH lazily resolves a module's precompiled header path
	ResolvePCH func(mod *module.Descriptor) string

	Logger  *slog.Logger
	Options Options
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.Default()
}

// Generate runs the full decision state machine for one target and returns
// the classified compilation result. The returned error carries the fatal
// cause when the result is a failure.
func (o *Orchestrator) Generate(target Target, modules []*module.Descriptor, manifestPath string) (codes.Result, error) {
	started := time.Now()
	log := o.logger()

	if target.IsGeneratorTool {
		// The generator's own target has no generated code; attempting a
		// self-build here would recurse forever.
		log.Debug("target is the generator tool, skipping code generation",
			slog.String("target", target.Name))
		return codes.UpToDate, nil
	}

	haveTool, toolTimestamp := o.Checker.Check()

	stale, err := o.Evaluator.IsStale(modules, toolTimestamp)
	if err != nil {
		return codes.OtherCompilationError, err
	}

	needsRun := o.Options.ForceRegenerate || !haveTool || stale

	// Discovery results must be cached during a gather pass even when
	// nothing is stale, so a later assemble pass can replay them without
	// rescanning.
	if o.Options.Phase == PhaseGather && o.ResolvePCH != nil {
		for _, mod := range modules {
			if mod.PrecompiledHeaderPath == "" {
				mod.PrecompiledHeaderPath = o.ResolvePCH(mod)
			}
		}
	}

	if needsRun && o.shouldBuildTool(haveTool) {
		log.Info("building generator tool",
			slog.String("target", o.Options.GeneratorTargetName))

		if err := o.BuildTarget(o.Options.GeneratorTargetName); err != nil {
			return codes.OtherCompilationError,
				fmt.Errorf("failed to build generator tool %s: %w", o.Options.GeneratorTargetName, err)
		}
	}

	// The manifest is cheap relative to generation and the post-process
	// hook needs it even on the up-to-date path.
	m := manifest.Build(manifest.Target{
		Name:       target.Name,
		IsGame:     target.IsGame,
		LocalRoot:  target.LocalRoot,
		RemoteRoot: target.RemoteRoot,
	}, modules, func(mod *module.Descriptor) bool {
		return !o.Evaluator.Protected(mod)
	})

	ran := false
	exitCode := 0

	if needsRun {
		result, code, err := o.generate(target, m, manifestPath)
		exitCode = code
		if err != nil {
			o.record(target, started, stale, true, exitCode, result)
			return result, err
		}

		ran = true

		// Subsequent steps must observe the generator's writes.
		o.Meta.Invalidate()
	} else {
		log.Info("generated code is up to date", slog.String("target", target.Name))
	}

	if o.PostSync != nil {
		if err := o.PostSync(m); err != nil {
			return codes.OtherCompilationError,
				fmt.Errorf("post-generation sync failed for %s: %w", target.Name, err)
		}
	}

	if err := o.updateFingerprints(modules); err != nil {
		return codes.OtherCompilationError, err
	}

	result := codes.UpToDate
	if ran {
		result = codes.Succeeded
	}

	o.record(target, started, stale, ran, exitCode, result)

	return result, nil
}

// shouldBuildTool decides whether to rebuild the generator before running
// it. Installed distributions, an explicit skip policy, hot reload, and a
// valid tool during an assemble pass all suppress the build.
func (o *Orchestrator) shouldBuildTool(haveTool bool) bool {
	if o.Options.Installed || o.Options.SkipToolBuild || o.Options.HotReload {
		return false
	}

	if haveTool && o.Options.Phase == PhaseAssemble {
		return false
	}

	return o.BuildTarget != nil
}

// generate writes the manifest and runs the generator, returning the
// classified result and the raw exit code.
func (o *Orchestrator) generate(target Target, m *manifest.Manifest, manifestPath string) (codes.Result, int, error) {
	log := o.logger()

	if _, err := os.Stat(o.Options.GeneratorPath); err != nil {
		return codes.OtherCompilationError, 0,
			fmt.Errorf("generator executable not found at %s", o.Options.GeneratorPath)
	}

	if err := m.WriteFile(manifestPath); err != nil {
		return codes.OtherCompilationError, 0, err
	}

	args := o.generatorArgs(target, manifestPath)

	log.Info("running generator",
		slog.String("executable", o.Options.GeneratorPath),
		slog.String("target", target.Name))

	exitCode, err := o.Runner.Run(o.Options.GeneratorPath, args, func(line string) {
		log.Info(line)
	})
	if err != nil {
		return codes.OtherCompilationError, exitCode, err
	}

	result := codes.FromExitCode(exitCode)
	if !result.IsSuccess() {
		return result, exitCode,
			fmt.Errorf("generator failed for %s with exit code %d: %s", target.Name, exitCode, result)
	}

	return result, exitCode, nil
}

// generatorArgs assembles the generator command line: the compilation-unit
// identifier, the manifest path, fixed log-verbosity overrides, and the
// policy flags.
func (o *Orchestrator) generatorArgs(target Target, manifestPath string) []string {
	identifier := target.Name
	if target.ProjectFile != "" {
		identifier = target.ProjectFile
	}

	args := []string{
		identifier,
		manifestPath,
		`-LogCmds=loginit warning, exit warning`,
	}

	if o.Options.Installed {
		args = append(args, "-Installed")
	}

	if o.Options.FailOnGeneratedChange {
		args = append(args, "-FailIfGeneratedCodeChanges")
	}

	return args
}

// updateFingerprints rewrites every non-protected module's fingerprint with
// its current header list. This runs on the up-to-date path too: it is what
// keeps the next run's staleness check valid.
func (o *Orchestrator) updateFingerprints(modules []*module.Descriptor) error {
	for _, mod := range modules {
		if o.Evaluator.Protected(mod) {
			continue
		}

		if err := o.Fingerprints.Write(mod.GeneratedDir(), mod.AllHeaders()); err != nil {
			return fmt.Errorf("failed to update fingerprint for module %s: %w", mod.Name, err)
		}
	}

	return nil
}

// record appends a run entry to the history store, if one is attached.
func (o *Orchestrator) record(target Target, started time.Time, stale, ran bool, exitCode int, result codes.Result) {
	if o.History == nil {
		return
	}

	entry := history.Entry{
		Target:     target.Name,
		Timestamp:  time.Now(),
		Stale:      stale,
		Generated:  ran,
		ExitCode:   exitCode,
		Result:     int(result),
		DurationMS: time.Since(started).Milliseconds(),
	}

	if err := o.History.Record(entry); err != nil {
		o.logger().Warn("failed to record run history", slog.String("error", err.Error()))
	}
}
