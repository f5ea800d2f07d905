package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"newsdeck/reader/internal/bookmarks"
	"newsdeck/reader/internal/config"
	"newsdeck/reader/internal/database"
	"newsdeck/reader/internal/feed"
	importbookmarks "newsdeck/reader/internal/import"
	"newsdeck/reader/internal/models"
	"newsdeck/reader/internal/newsapi"
	"newsdeck/reader/internal/server"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func usage() {
	fmt.Println("Usage: reader [command] [options]")
	fmt.Println("Commands: serve, headlines, search, import")
	fmt.Println("\nFor command-specific options, use: reader [command] -h")
}

func main() {
	cfg := config.DefaultConfig()

	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	serveCmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("NEWSDECK_DB_PATH", config.DefaultDBPath()),
		"Path to the bookmarks SQLite database file (env: NEWSDECK_DB_PATH)")
	serveCmd.StringVar(&cfg.ServerHost, "host", config.GetEnvString("NEWSDECK_HOST", config.DefaultServerHost),
		"Host to bind the server to (env: NEWSDECK_HOST)")
	serveCmd.IntVar(&cfg.ServerPort, "port", config.GetEnvInt("NEWSDECK_PORT", config.DefaultServerPort),
		"Port to listen on (env: NEWSDECK_PORT)")
	var serveLogLevelStr string
	serveCmd.StringVar(&serveLogLevelStr, "log-level", config.GetEnvString("NEWSDECK_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: NEWSDECK_LOG_LEVEL)")

	headlinesCmd := flag.NewFlagSet("headlines", flag.ExitOnError)
	var category string
	headlinesCmd.StringVar(&category, "category", "", "Optional headlines category (business, technology, ...)")
	var headlinesLogLevelStr string
	headlinesCmd.StringVar(&headlinesLogLevelStr, "log-level", config.GetEnvString("NEWSDECK_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: NEWSDECK_LOG_LEVEL)")

	searchCmd := flag.NewFlagSet("search", flag.ExitOnError)
	var query string
	searchCmd.StringVar(&query, "q", "", "Search query (required)")
	var searchLogLevelStr string
	searchCmd.StringVar(&searchLogLevelStr, "log-level", config.GetEnvString("NEWSDECK_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: NEWSDECK_LOG_LEVEL)")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	var csvPath string
	importCmd.StringVar(&csvPath, "csv", config.GetEnvString("NEWSDECK_CSV_PATH", "./bookmarks.csv"),
		"Path to the bookmarks CSV file (env: NEWSDECK_CSV_PATH)")
	importCmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("NEWSDECK_DB_PATH", config.DefaultDBPath()),
		"Path to the bookmarks SQLite database file (env: NEWSDECK_DB_PATH)")
	var importLogLevelStr string
	importCmd.StringVar(&importLogLevelStr, "log-level", config.GetEnvString("NEWSDECK_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: NEWSDECK_LOG_LEVEL)")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd.Parse(os.Args[2:])
		applyLogLevel(cfg, serveLogLevelStr)

		if err := runServe(cfg); err != nil {
			log.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}

	case "headlines":
		headlinesCmd.Parse(os.Args[2:])
		applyLogLevel(cfg, headlinesLogLevelStr)

		if err := runHeadlines(cfg, category); err != nil {
			log.Error().Err(err).Msg("Headlines fetch failed")
			os.Exit(1)
		}

	case "search":
		searchCmd.Parse(os.Args[2:])
		applyLogLevel(cfg, searchLogLevelStr)

		if query == "" && searchCmd.NArg() > 0 {
			query = searchCmd.Arg(0)
		}
		if query == "" {
			fmt.Println("Usage: reader search -q <query>")
			os.Exit(1)
		}

		if err := runSearch(cfg, query); err != nil {
			log.Error().Err(err).Msg("Search failed")
			os.Exit(1)
		}

	case "import":
		importCmd.Parse(os.Args[2:])
		applyLogLevel(cfg, importLogLevelStr)

		if err := runImport(cfg, csvPath); err != nil {
			log.Error().Err(err).Msg("Import failed")
			os.Exit(1)
		}

	case "-h", "--help", "help":
		usage()
		os.Exit(0)

	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		usage()
		os.Exit(1)
	}
}

func applyLogLevel(cfg *config.Config, levelStr string) {
	if level, err := zerolog.ParseLevel(levelStr); err == nil {
		cfg.LogLevel = level
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
}

func newClient(cfg *config.Config) *newsapi.Client {
	if cfg.NewsAPIKey == "" {
		log.Warn().Msg("No upstream API key configured, requests will be rejected upstream (env: NEWSDECK_NEWSAPI_KEY)")
	}
	return newsapi.NewClient(newsapi.Config{
		BaseURL:        cfg.NewsAPIBaseURL,
		APIKey:         cfg.NewsAPIKey,
		Country:        cfg.Country,
		ConnectTimeout: cfg.UpstreamTimeout,
		ReceiveTimeout: cfg.UpstreamTimeout,
	})
}

// runServe starts the HTTP API over one long-lived client, machine, and
// store instance.
func runServe(cfg *config.Config) error {
	machine := feed.NewMachine(newClient(cfg))
	store := bookmarks.NewStore(database.NewConfig(cfg.DBPath))

	return server.RunServer(machine, store, cfg.ListenAddr(), log.Logger, cfg.APIKey)
}

// runHeadlines fetches headlines once and prints them as JSON.
func runHeadlines(cfg *config.Config, category string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout*2)
	defer cancel()

	articles, err := newClient(cfg).TopHeadlines(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to fetch headlines: %w", err)
	}

	return printArticles(articles)
}

// runSearch searches articles once and prints them as JSON.
func runSearch(cfg *config.Config, query string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout*2)
	defer cancel()

	articles, err := newClient(cfg).Search(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to search articles: %w", err)
	}

	return printArticles(articles)
}

// runImport loads bookmarks from a CSV export into the store.
func runImport(cfg *config.Config, csvPath string) error {
	store := bookmarks.NewStore(database.NewConfig(cfg.DBPath))
	defer store.Close()

	importer := importbookmarks.NewImporter(store)
	return importer.ImportBookmarks(context.Background(), csvPath)
}

func printArticles(articles []models.Article) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(articles)
}
