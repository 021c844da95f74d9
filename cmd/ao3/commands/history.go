package commands

import (
	"ao3-scraper/internal/archivesync"
	"ao3-scraper/lib/chrono"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historySince *string
	historyLimit *int
)

func init() {
	historySince = historyCmd.Flags().String("since", "7d", "How far back to go, like 7d, 2w or 36h.")
	historyLimit = historyCmd.Flags().Int("limit", 0, "Stop after this many works, 0 means no limit.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--since <duration>] [--limit <n>]",
	Short: "Lists the works the configured user read recently.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		since, err := parseSince(*historySince)
		if err != nil {
			return err
		}
		cutoff := archivesync.Cutoff(chrono.NewStandardImpl(time.UTC).Now(), since)

		user, err := getEnv(cmd).login(ctx)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Work", "Last read"})

		count := 0
		history := user.ReadingHistory()
		for history.Next(ctx) {
			item := history.Value()
			if item.LastRead.Before(cutoff) {
				break
			}
			t.AppendRow(table.Row{item.WorkID, item.LastRead.Format(time.DateOnly)})
			count++
			if *historyLimit > 0 && count >= *historyLimit {
				break
			}
		}
		if err := history.Err(); err != nil {
			return err
		}

		t.Render()
		return nil
	},
}
