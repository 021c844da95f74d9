package commands

import (
	"ao3-scraper/lib/store"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchLimit *int
var searchFandoms *[]string

func init() {
	searchLimit = searchCmd.Flags().Int("limit", 10, "The maximum amount of results.")
	searchFandoms = searchCmd.Flags().StringSlice("fandom", nil, "Only search works in a fandom containing this name, can be repeated.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <title> [--limit <n>] [--fandom <name>]",
	Short: "Searches the titles of synced works.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, getEnv(cmd).config.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		matches, err := st.SearchTitles(ctx, strings.Join(args, " "), *searchFandoms, *searchLimit)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Work", "Title", "Similarity"})
		for _, m := range matches {
			t.AppendRow(table.Row{m.WorkID, m.Title, fmt.Sprintf("%.2f", m.Similarity)})
		}
		t.Render()
		return nil
	},
}
