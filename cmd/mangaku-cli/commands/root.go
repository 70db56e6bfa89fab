package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"mangaku-backend/lib/configutil"
	"mangaku-backend/lib/fetch"
	"mangaku-backend/lib/restyutil"
	"mangaku-backend/lib/scrapers/mangaku"
	"mangaku-backend/lib/serviceutil"
	"mangaku-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	Retries           int     `json:"retries"`
	PoolSize          int     `json:"pool_size"`
	PoolMaxSize       int     `json:"pool_max_size"`
	InsecureTls       bool    `json:"insecure_tls"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

var debugHttp *bool
var verbose *bool

var rootCmd = &cobra.Command{
	Use:   "mangaku-cli",
	Short: "Scrapes the mangaaku.com catalog from the command line.",
}

func init() {
	debugHttp = rootCmd.PersistentFlags().Bool("debug-http", false, "Dump raw HTTP exchanges under .dev/resty.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func createScraper() *mangaku.Scraper {
	telemetry.InitSlog(*verbose || *debugHttp)

	cfg, err := configutil.ReadRecursively[Config]("mangaku.json5")
	if os.IsNotExist(err) {
		slog.Debug("no mangaku.json5 found, using defaults")
	} else if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	scraper, err := mangaku.NewScraper(mangaku.Options{
		BaseUrl: cfg.BaseUrl,
		Fetch: fetch.Options{
			Timeout:            time.Duration(cfg.TimeoutSeconds) * time.Second,
			Retries:            cfg.Retries,
			PoolSize:           cfg.PoolSize,
			PoolMaxSize:        cfg.PoolMaxSize,
			InsecureSkipVerify: cfg.InsecureTls,
			CloudflareBypass:   cfg.CloudflareBypass,
			RequestsPerSecond:  cfg.RequestsPerSecond,
		},
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize scraper", err)
	}

	if *debugHttp {
		scraper.SetDebugOutput(restyutil.NewFilesystemOutput(".dev/resty/mangaku-cli"))
	}
	return scraper
}

func logStats(scraper *mangaku.Scraper, elapsed time.Duration) {
	stats := scraper.Stats()
	slog.Info(
		"scrape finished",
		"seconds", elapsed.Seconds(),
		"requests", stats.Requests,
		"cache_hits", stats.CacheHits,
	)
}
