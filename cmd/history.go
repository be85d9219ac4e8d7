package cmd

import (
	"fmt"
	"time"

	"github.com/Norgate-AV/hgen/internal/codes"
	"github.com/Norgate-AV/hgen/internal/history"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "List recent generation runs",
	RunE:         runHistory,
	SilenceUsage: true,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	runs, err := history.Open(viper.GetString("history_dir"))
	if err != nil {
		return err
	}
	defer runs.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := runs.List(limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No generation runs recorded")
		return nil
	}

	for _, entry := range entries {
		action := "skipped"
		if entry.Generated {
			action = "generated"
		}

		fmt.Printf("%s  %-20s  %-9s  %-30s  %dms\n",
			entry.Timestamp.Local().Format(time.DateTime),
			entry.Target,
			action,
			codes.Result(entry.Result),
			entry.DurationMS)
	}

	return nil
}
