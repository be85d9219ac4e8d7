package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Norgate-AV/hgen/internal/config"
	"github.com/Norgate-AV/hgen/internal/fingerprint"
	"github.com/Norgate-AV/hgen/internal/fsmeta"
	"github.com/Norgate-AV/hgen/internal/history"
	"github.com/Norgate-AV/hgen/internal/module"
	"github.com/Norgate-AV/hgen/internal/orchestrator"
	"github.com/Norgate-AV/hgen/internal/runner"
	"github.com/Norgate-AV/hgen/internal/staleness"
	"github.com/Norgate-AV/hgen/internal/tool"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:          "generate <module-set.json>",
	Short:        "Run the incremental code-generation decision engine",
	Long:         `Evaluate staleness for the modules described in the module-set file and, when required, rebuild the generator tool, write the manifest, and run the generator.`,
	RunE:         runGenerate,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

func init() {
	generateCmd.Flags().String("manifest", "", "Output path for the generation manifest")
	generateCmd.Flags().Bool("assemble", false, "Fast replay pass: reuse cached discovery results, no rescans")
	generateCmd.Flags().Bool("hot-reload", false, "IDE-driven hot reload: never rebuild the generator tool")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader().LoadForGenerate(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)

	input, err := module.LoadInput(args[0])
	if err != nil {
		return err
	}

	modules, err := input.Descriptors()
	if err != nil {
		return err
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath == "" {
		manifestPath = filepath.Join(cfg.EngineRoot, "Intermediate", input.Target.Name+".manifest.json")
	}

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	runs, err := history.Open(cfg.HistoryDir)
	if err != nil {
		logger.Warn("run history unavailable", slog.String("error", err.Error()))
		runs = nil
	} else {
		defer runs.Close()
	}

	assemble, _ := cmd.Flags().GetBool("assemble")
	hotReload, _ := cmd.Flags().GetBool("hot-reload")

	phase := orchestrator.PhaseGather
	if assemble {
		phase = orchestrator.PhaseAssemble
	}

	meta := fsmeta.NewCache()
	proc := runner.New()

	orch := &orchestrator.Orchestrator{
		Checker: &tool.Checker{
			ReceiptPath:    cfg.ReceiptPath,
			Expand:         tool.DefaultExpander(cfg.EngineRoot, filepath.Dir(input.Target.ProjectFile)),
			LibraryVersion: tool.SidecarLibraryVersion,
			Logger:         logger,
		},
		Evaluator: &staleness.Evaluator{
			Store:          fingerprint.NewStore(),
			Meta:           meta,
			CoreModuleName: cfg.CoreModule,
			Installed:      cfg.Installed,
			InstalledRoot:  cfg.InstalledRoot,
			FullRescan:     cfg.FullRescan,
			Logger:         logger,
		},
		Fingerprints: fingerprint.NewStore(),
		Meta:         meta,
		Runner:       proc,
		History:      runs,
		BuildTarget:  toolBuilder(cfg, proc, logger),
		ResolvePCH:   resolvePCH,
		Logger:       logger,
		Options: orchestrator.Options{
			GeneratorPath:         cfg.GeneratorPath,
			GeneratorTargetName:   cfg.GeneratorTarget,
			ForceRegenerate:       cfg.ForceRegenerate,
			SkipToolBuild:         cfg.SkipToolBuild,
			HotReload:             hotReload,
			Installed:             cfg.Installed,
			FailOnGeneratedChange: cfg.FailOnGeneratedChange,
			Phase:                 phase,
		},
	}

	result, err := orch.Generate(orchestrator.Target{
		Name:            input.Target.Name,
		ProjectFile:     input.Target.ProjectFile,
		IsGame:          input.Target.IsGame,
		IsGeneratorTool: input.Target.IsGeneratorTool,
		LocalRoot:       input.Target.LocalRoot,
		RemoteRoot:      input.Target.RemoteRoot,
	}, modules, manifestPath)
	if err != nil {
		return fmt.Errorf("%s: %w", result, err)
	}

	logger.Info("code generation finished",
		slog.String("target", input.Target.Name),
		slog.String("result", result.String()))

	return nil
}

// toolBuilder adapts the configured host build command into the
// build-a-target capability the orchestrator needs. Without a configured
// command the capability is absent and tool self-build is skipped.
func toolBuilder(cfg *config.Config, proc *runner.Runner, logger *slog.Logger) func(string) error {
	if cfg.BuildCommand == "" {
		return nil
	}

	return func(name string) error {
		exitCode, err := proc.Run(cfg.BuildCommand, []string{name}, func(line string) {
			logger.Info(line)
		})
		if err != nil {
			return err
		}

		if exitCode != 0 {
			return fmt.Errorf("build command exited with code %d", exitCode)
		}

		return nil
	}
}

// resolvePCH looks for the conventional private precompiled header.
func resolvePCH(mod *module.Descriptor) string {
	path := filepath.Join(mod.RootDirectory, "Private", mod.Name+"PCH.h")
	if _, err := os.Stat(path); err == nil {
		return path
	}

	return ""
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
