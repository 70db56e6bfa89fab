package commands

import (
	"fmt"
	"os"
	"time"

	"mangaku-backend/lib/scrapers/mangaku"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listPage *int
var listLimit *int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog ordered by latest update.",
	Run: func(cmd *cobra.Command, args []string) {
		scraper := createScraper()
		start := time.Now()

		summaries, err := scraper.Catalog(cmd.Context(), *listPage, *listLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "catalog scrape failed: %v\n", err)
			os.Exit(1)
		}

		renderSummaries(summaries)
		logStats(scraper, time.Since(start))
	},
}

func init() {
	listPage = listCmd.Flags().IntP("page", "p", 1, "Listing page to fetch.")
	listLimit = listCmd.Flags().IntP("limit", "l", 0, "Cap on returned entries, 0 for all.")
	rootCmd.AddCommand(listCmd)
}

func renderSummaries(summaries []mangaku.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Id", "Title", "Chapters", "Rating"})
	for _, s := range summaries {
		t.AppendRow(table.Row{s.Id, s.Title, s.TotalChapters, s.Rating})
	}
	t.Render()
}
