package commands

import (
	"ao3-scraper/lib/scrapers/ao3"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var workJson *bool

func init() {
	workJson = workCmd.Flags().Bool("json", false, "Print the work as json.")
	rootCmd.AddCommand(workCmd)
}

var workIdRegex = regexp.MustCompile(`^[0-9]+$`)

// workIDFromArg accepts either a bare work id or a link to the work.
func workIDFromArg(arg string) (string, error) {
	if workIdRegex.MatchString(arg) {
		return arg, nil
	}
	return ao3.WorkIDFromURL(arg)
}

var workCmd = &cobra.Command{
	Use:   "work <id | url> [--json]",
	Short: "Prints the metadata of a work.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := workIDFromArg(args[0])
		if err != nil {
			return err
		}

		session, err := getEnv(cmd).session(cmd.Context())
		if err != nil {
			return err
		}
		work, err := session.Work(cmd.Context(), id)
		if err != nil {
			return err
		}
		rep, err := work.Representation()
		if err != nil {
			return fmt.Errorf("read %s: %w", work, err)
		}

		if *workJson {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rep)
		}

		t := newTable()
		t.SetTitle(rep.Title)
		t.AppendRows([]table.Row{
			{"Link", work.URL()},
			{"Author", rep.Author},
			{"Rating", joinList(rep.Rating)},
			{"Warnings", joinList(rep.Warnings)},
			{"Category", joinList(rep.Category)},
			{"Fandoms", joinList(rep.Fandoms)},
			{"Relationships", joinList(rep.Relationship)},
			{"Characters", joinList(rep.Characters)},
			{"Additional tags", joinList(rep.AdditionalTags)},
			{"Language", rep.Language},
			{"Published", rep.Stats.Published},
			{"Words", rep.Stats.Words},
			{"Comments", rep.Stats.Comments},
			{"Kudos", rep.Stats.Kudos},
			{"Bookmarks", rep.Stats.Bookmarks},
			{"Hits", rep.Stats.Hits},
		})
		t.Render()
		return nil
	},
}
