package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"mangaku-backend/lib/scrapers/mangaku"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var detailCmd = &cobra.Command{
	Use:   "detail <slug>",
	Short: "Show the full record of one title.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scraper := createScraper()
		start := time.Now()

		detail, err := scraper.Detail(cmd.Context(), args[0])
		if errors.Is(err, mangaku.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "no such title: %s\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "detail scrape failed: %v\n", err)
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Title", detail.Title},
			{"Type", detail.Type},
			{"Status", detail.Status},
			{"Author", detail.Author},
			{"Year", detail.Year},
			{"Rating", detail.Rating},
			{"Views", detail.Views},
			{"Genres", strings.Join(detail.Genres, ", ")},
			{"Chapters", detail.ChapterCount},
			{"Description", detail.Description},
		})
		t.Render()

		for _, chapter := range detail.Chapters {
			fmt.Println(chapter)
		}
		logStats(scraper, time.Since(start))
	},
}

func init() {
	rootCmd.AddCommand(detailCmd)
}
