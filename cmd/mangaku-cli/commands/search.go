package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var searchPage *int
var searchLimit *int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog, best matches first.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scraper := createScraper()
		start := time.Now()

		summaries, err := scraper.Search(cmd.Context(), args[0], *searchPage, *searchLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "search scrape failed: %v\n", err)
			os.Exit(1)
		}

		renderSummaries(summaries)
		logStats(scraper, time.Since(start))
	},
}

func init() {
	searchPage = searchCmd.Flags().IntP("page", "p", 1, "Result page to fetch.")
	searchLimit = searchCmd.Flags().IntP("limit", "l", 0, "Cap on returned entries, 0 for all.")
	rootCmd.AddCommand(searchCmd)
}
