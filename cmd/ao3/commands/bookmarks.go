package commands

import (
	"ao3-scraper/lib/scrapers/ao3"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	bookmarksUser  *string
	bookmarksLimit *int
)

func init() {
	bookmarksUser = bookmarksCmd.Flags().String("user", "", "Whose bookmarks to list, defaults to the configured user.")
	bookmarksLimit = bookmarksCmd.Flags().Int("limit", 0, "Stop after this many bookmarks, 0 lists all of them.")
	rootCmd.AddCommand(bookmarksCmd)
}

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks [--user <username>] [--limit <n>]",
	Short: "Lists the ids of the works a user bookmarked.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := getEnv(cmd)

		username := *bookmarksUser
		if username == "" {
			username = env.config.Username
		}
		if username == "" {
			return fmt.Errorf("pass --user or configure a username")
		}

		// logging in shows private bookmarks too
		session, err := env.session(ctx)
		if err != nil {
			return err
		}

		count := 0
		bookmarks := ao3.NewUser(session, username).BookmarkIDs()
		for bookmarks.Next(ctx) {
			fmt.Println(bookmarks.Value())
			count++
			if *bookmarksLimit > 0 && count >= *bookmarksLimit {
				break
			}
		}
		return bookmarks.Err()
	},
}
