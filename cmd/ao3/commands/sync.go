package commands

import (
	"ao3-scraper/internal/archivesync"
	"ao3-scraper/lib/chrono"
	"ao3-scraper/lib/store"
	"ao3-scraper/lib/telemetry"
	"context"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var syncSince *string

func init() {
	syncSince = syncCmd.Flags().String("since", "7d", "How far back in the reading history to go, like 7d, 2w or 36h.")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [--since <duration>]",
	Short: "Stores recently read works, kudos and bookmarks of the configured user.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := getEnv(cmd)

		since, err := parseSince(*syncSince)
		if err != nil {
			return err
		}

		if tel.MeterProvider != nil {
			perfCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			telemetry.InstrumentPerfStats(perfCtx, 5*time.Second)
		}

		st, err := store.Open(ctx, env.config.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		user, err := env.login(ctx)
		if err != nil {
			return err
		}

		syncer := archivesync.NewSyncer(
			user,
			st,
			chrono.NewStandardImpl(time.UTC),
			telemetry.SlogAPI{},
		)

		start := time.Now()
		result, err := syncer.Sync(ctx, since)
		if err != nil {
			return err
		}
		slog.Info("sync finished", "duration", time.Since(start).String())

		t := newTable()
		t.AppendRows([]table.Row{
			{"Works stored", result.Works},
			{"Works skipped", joinList(result.Skipped)},
			{"Kudos left", result.Kudos},
			{"Bookmarks", result.Bookmarks},
		})
		t.Render()
		return nil
	},
}
