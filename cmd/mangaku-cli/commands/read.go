package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"mangaku-backend/lib/scrapers/mangaku"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <chapter-path>",
	Short: "Resolve the image mirrors of one chapter.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scraper := createScraper()
		start := time.Now()

		chapter, err := scraper.ReadChapter(cmd.Context(), args[0])
		if errors.Is(err, mangaku.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "no such chapter: %s\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "reader scrape failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(chapter.Title)

		labels := make([]string, 0, len(chapter.Servers))
		for label := range chapter.Servers {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			fmt.Printf("%s (%d images)\n", label, len(chapter.Servers[label]))
			for _, img := range chapter.Servers[label] {
				fmt.Printf("  %s\n", img)
			}
		}
		logStats(scraper, time.Since(start))
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
