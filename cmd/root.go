package cmd

import (
	"fmt"
	"os"

	"github.com/Norgate-AV/hgen/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:          "hgen",
	Short:        "Incremental code-generation engine for annotated headers",
	Long:         `Decides whether machine-generated source derived from annotated headers is stale and orchestrates regeneration through the external generator tool.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)

	rootCmd.PersistentFlags().StringP("engine-root", "e", "", "Root of the engine tree")
	rootCmd.PersistentFlags().String("generator-path", "", "Path to the generator executable")
	rootCmd.PersistentFlags().String("core-module", "", "Name of the generated-code baseline module")
	rootCmd.PersistentFlags().Bool("installed", false, "Treat the engine as a read-only installed distribution")
	rootCmd.PersistentFlags().String("installed-root", "", "Protected root of the installed distribution")
	rootCmd.PersistentFlags().Bool("skip-tool-build", false, "Never rebuild the generator tool")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Regenerate regardless of staleness")
	rootCmd.PersistentFlags().Bool("fail-on-change", false, "Fail if generated code changes unexpectedly")
	rootCmd.PersistentFlags().Bool("full-rescan", true, "Enable the directory-timestamp rescan heuristic")
	rootCmd.PersistentFlags().String("build-command", "", "Host build command used to rebuild the generator tool")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cleanCmd)

	viper.SetDefault("core_module", "Core")
	viper.SetDefault("full_rescan", true)
	viper.SetDefault("verbose", false)
}
