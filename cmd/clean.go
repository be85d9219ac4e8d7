package cmd

import (
	"fmt"

	"github.com/Norgate-AV/hgen/internal/history"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cleanCmd = &cobra.Command{
	Use:          "clean",
	Short:        "Clear the recorded run history",
	RunE:         runClean,
	SilenceUsage: true,
}

func runClean(cmd *cobra.Command, args []string) error {
	runs, err := history.Open(viper.GetString("history_dir"))
	if err != nil {
		return err
	}
	defer runs.Close()

	count, err := runs.Stats()
	if err != nil {
		return err
	}

	if err := runs.Clear(); err != nil {
		return err
	}

	fmt.Printf("Cleared %d recorded runs\n", count)

	return nil
}
