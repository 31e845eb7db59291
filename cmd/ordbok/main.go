// Package main is the Ordbok CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/ordbok/internal/cli"
	"github.com/hyperjump/ordbok/internal/config"
	"github.com/hyperjump/ordbok/internal/corpus"
	"github.com/hyperjump/ordbok/internal/models"
	"github.com/hyperjump/ordbok/internal/search"
	"github.com/hyperjump/ordbok/internal/server"
	"github.com/hyperjump/ordbok/internal/storage"
	"github.com/hyperjump/ordbok/internal/watcher"
	"github.com/hyperjump/ordbok/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/ordbok/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "ordbok server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// loadEnv reads .env from the working directory when present. A missing file is not an error.
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func main() {
	if err := loadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
	}
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "import":
		runImport()
	case "favorite", "favorites":
		runFavorite()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("ordbok version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (searches, corpus reloads, file events)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.Strings("sources", cfg.Corpus.Sources),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadCorpus(ctx, components.Provider, cfg.Corpus.Sources); err != nil {
		logger.Fatal("Failed to load corpus", zap.Error(err))
	}
	logger.Info("corpus ready", zap.Int("words", components.Engine.CorpusSize()))

	srv := server.NewServer(components.Engine, components.Provider, components.Storage, cfg, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	if cfg.Corpus.Watch && len(cfg.Corpus.Sources) > 0 {
		watchOpts := []watcher.WatcherOption{watcher.WithDebounce(cfg.Corpus.Debounce())}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		sources := cfg.Corpus.Sources
		w, err := watcher.NewWatcher(sources, func(path string) {
			// Re-import every source so that first-occurrence order across files holds.
			if _, err := components.Provider.SyncFiles(gctx, sources...); err != nil {
				logger.Warn("corpus reload after change failed", zap.String("path", path), zap.Error(err))
			}
		}, watchOpts...)
		if err != nil {
			logger.Fatal("Failed to create watcher", zap.Error(err))
		}
		g.Go(func() error {
			if err := w.Start(gctx); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			logger.Info("Watching corpus sources", zap.Strings("files", w.Files()))
			<-gctx.Done()
			w.Stop()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

// loadCorpus syncs storage to the configured sources when any are set; otherwise it loads
// what storage already holds.
func loadCorpus(ctx context.Context, provider *corpus.Provider, sources []string) error {
	if len(sources) == 0 {
		return provider.Load(ctx)
	}
	_, err := provider.SyncFiles(ctx, sources...)
	return err
}

// printSearchUsage prints search subcommand usage and examples.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: ordbok search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Swedish or Arabic; Arabic diacritics are ignored.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Modes: contains (default), start, end, exact, favorites.
Sorts: relevance (default), alpha_asc (az), alpha_desc (za), richness, last_char.
Types: all (default), subst, verb, adj, adv, prep, pron, konj, fras, juridik, medicin, it, politik, religion.

Examples:
  ordbok search hund
  ordbok search --mode start --sort az bok
  ordbok search --type verb --limit 20 spring
  ordbok search كتاب
  ordbok search --mode favorites
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting (e.g. "vacker katt" vs vacker katt).
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves flags (and their values) to the front of the slice so that
// flag.Parse() sees them, keeping the query words in their original order. Go's flag
// package stops at the first non-flag argument, so "ordbok search vacker -mode exact katt"
// would otherwise leave -mode unparsed. Every search flag takes a value; "--" ends flag
// scanning.
func searchArgsReorder(args []string) []string {
	flags := make([]string, 0, len(args))
	words := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			words = append(words, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			words = append(words, a)
			continue
		}
		flags = append(flags, a)
		if !strings.Contains(a, "=") && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, words...)
}

// parseOutputFormat maps the --output flag to a writer format.
func parseOutputFormat(s string) (cli.SearchOutputFormat, error) {
	switch s {
	case "text":
		return cli.OutputText, nil
	case "compact":
		return cli.OutputCompact, nil
	case "json":
		return cli.OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage when server is not running)")
	mode := fs.String("mode", "contains", "match mode: contains, start, end, exact, favorites")
	typ := fs.String("type", models.TypeAll, "type bucket filter")
	sortBy := fs.String("sort", "relevance", "sort: relevance, alpha_asc, alpha_desc, richness, last_char")
	limit := fs.Int("limit", 0, "number of results (0 = server default)")
	offset := fs.Int("offset", 0, "results to skip")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	req := &models.SearchRequest{
		Query:  buildSearchQuery(fs.Args()),
		Mode:   models.Mode(*mode),
		Type:   *typ,
		Sort:   models.Sort(*sortBy),
		Limit:  *limit,
		Offset: *offset,
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = newAPIClient(*serverURL).Search(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		response, err = searchDirect(*configPath, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// searchDirect loads the stored corpus and searches it in-process.
func searchDirect(configPath string, req *models.SearchRequest) (*models.SearchResponse, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	ctx := context.Background()
	if err := components.Provider.Load(ctx); err != nil {
		return nil, err
	}
	response, err := components.Engine.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = cfg.Search.DefaultLimit
	}
	return response.Page(req.Offset, limit), nil
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL to notify with a corpus reload after import (empty = none)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: ordbok import [flags] <file.json|file.csv|file.xlsx>...")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	report, err := components.Provider.ImportFiles(context.Background(), fs.Args()...)
	if err != nil {
		fmt.Printf("Import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d words from %d files (%d duplicates, %d empty rows skipped)\n",
		report.Imported, report.Files, report.Duplicates, report.Skipped)

	if *serverURL != "" {
		if err := newAPIClient(*serverURL).Reload(true); err != nil {
			fmt.Printf("Server reload failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Server corpus reloaded")
	}
}

func runFavorite() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: ordbok favorite <add|remove|list> [id]")
		fmt.Println("  ordbok favorite add <id>     Mark a word as favorite")
		fmt.Println("  ordbok favorite remove <id>  Unmark a word")
		fmt.Println("  ordbok favorite list         List favorite word IDs")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("favorite", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	_ = fs.Parse(os.Args[3:])

	var favorites favoritesService
	if *serverURL != "" {
		favorites = newAPIClient(*serverURL)
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Printf("Failed to open storage: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		favorites = storeFavorites{store}
	}

	if err := favoriteCommand(context.Background(), favorites, sub, fs.Args(), os.Stdout); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// favoritesService is the favorites surface shared by the HTTP client and direct storage.
type favoritesService interface {
	AddFavorite(ctx context.Context, id string) error
	RemoveFavorite(ctx context.Context, id string) error
	ListFavorites(ctx context.Context) ([]string, error)
}

type storeFavorites struct {
	storage.Storage
}

func (s storeFavorites) ListFavorites(ctx context.Context) ([]string, error) {
	set, err := s.FavoriteIDs(ctx)
	if err != nil {
		return nil, err
	}
	ids := set.IDs()
	sort.Strings(ids)
	return ids, nil
}

func favoriteCommand(ctx context.Context, svc favoritesService, sub string, args []string, out io.Writer) error {
	switch sub {
	case "add", "remove":
		if len(args) < 1 {
			return fmt.Errorf("usage: ordbok favorite %s <id>", sub)
		}
		id := args[0]
		if sub == "add" {
			if err := svc.AddFavorite(ctx, id); err != nil {
				return fmt.Errorf("add failed: %w", err)
			}
			fmt.Fprintf(out, "Added: %s\n", id)
			return nil
		}
		if err := svc.RemoveFavorite(ctx, id); err != nil {
			return fmt.Errorf("remove failed: %w", err)
		}
		fmt.Fprintf(out, "Removed: %s\n", id)
		return nil
	case "list":
		ids, err := svc.ListFavorites(ctx)
		if err != nil {
			return fmt.Errorf("list failed: %w", err)
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	default:
		return fmt.Errorf("unknown favorite subcommand: %s", sub)
	}
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	MaxResults   int      `json:"max_results"`
	EmptyQuery   string   `json:"empty_query"`
	DefaultLimit int      `json:"default_limit,omitempty"`
	DatabasePath string   `json:"database_path,omitempty"`
	Sources      []string `json:"sources,omitempty"`
	Watch        bool     `json:"watch"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Words          int64                 `json:"words"`
	Favorites      int64                 `json:"favorites"`
	CorpusSize     int                   `json:"corpus_size"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status *statusResponse
	var err error
	if *serverURL != "" {
		status, err = newAPIClient(*serverURL).Status()
	} else {
		status, err = statusDirect(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeStatusText(os.Stdout, status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusDirect(configPath string) (*statusResponse, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	ctx := context.Background()
	if err := components.Provider.Load(ctx); err != nil {
		return nil, err
	}
	wordCount, err := components.Storage.CountWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("count words failed: %w", err)
	}
	favoriteCount, err := components.Storage.CountFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("count favorites failed: %w", err)
	}
	opts := components.Engine.Options()
	status := &statusResponse{
		Words:      wordCount,
		Favorites:  favoriteCount,
		CorpusSize: components.Engine.CorpusSize(),
		Config: &statusConfigResponse{
			MaxResults:   opts.MaxResults,
			EmptyQuery:   string(opts.EmptyQuery),
			DefaultLimit: cfg.Search.DefaultLimit,
			DatabasePath: cfg.Storage.DatabasePath,
			Sources:      cfg.Corpus.Sources,
			Watch:        cfg.Corpus.Watch,
		},
	}
	if diskBytes, err := components.Storage.DiskUsageBytes(); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status, nil
}

func writeStatusText(out io.Writer, status *statusResponse) {
	fmt.Fprintf(out, "words:              %d   # count of stored words\n", status.Words)
	fmt.Fprintf(out, "favorites:          %d   # count of favorite words\n", status.Favorites)
	fmt.Fprintf(out, "corpus_size:        %d   # words in the searchable snapshot\n", status.CorpusSize)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(out, "disk_usage_bytes:   %d   # database on disk\n", *status.DiskUsageBytes)
	}
	if status.Config == nil {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "# configuration")
	fmt.Fprintf(out, "max_results:        %d\n", status.Config.MaxResults)
	fmt.Fprintf(out, "empty_query:        %s\n", status.Config.EmptyQuery)
	if status.Config.DefaultLimit > 0 {
		fmt.Fprintf(out, "default_limit:      %d\n", status.Config.DefaultLimit)
	}
	if status.Config.DatabasePath != "" {
		fmt.Fprintf(out, "database_path:      %s\n", status.Config.DatabasePath)
	}
	for _, src := range status.Config.Sources {
		fmt.Fprintf(out, "source:             %s\n", src)
	}
	fmt.Fprintf(out, "watch:              %t\n", status.Config.Watch)
}

// Components holds the wired storage, corpus provider and engine.
type Components struct {
	Storage  *storage.SQLiteStorage
	Provider *corpus.Provider
	Engine   *search.Engine
}

// Close releases the storage connection.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	provOpts := []corpus.ProviderOption{}
	engineOpts := []search.EngineOption{
		search.WithOptions(search.Options{
			MaxResults: cfg.Search.MaxResults,
			EmptyQuery: search.EmptyQueryPolicy(cfg.Search.EmptyQuery),
		}),
	}
	if logger != nil {
		provOpts = append(provOpts, corpus.WithLogger(logger))
		if debug {
			engineOpts = append(engineOpts, search.WithLogger(logger))
		}
	}
	provider := corpus.NewProvider(store, provOpts...)
	engine := search.NewEngine(provider, store, engineOpts...)

	return &Components{
		Storage:  store,
		Provider: provider,
		Engine:   engine,
	}, nil
}

func printUsage() {
	fmt.Println(`ordbok - Swedish/Arabic dictionary search

Usage:
  ordbok server [flags]                 Start the HTTP server
  ordbok search [flags] <query>         Search the dictionary
  ordbok import [flags] <files...>      Import words from .json, .csv or .xlsx
  ordbok favorite <add|remove|list>     Manage favorite words
  ordbok status [flags]                 Show storage and corpus status
  ordbok version                        Show version
  ordbok help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/ordbok/config.yaml)
  --debug            Enable debug logging (searches, corpus reloads, file events)

Search Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to search storage directly.
  --mode string      contains, start, end, exact or favorites (default: contains)
  --type string      Type bucket filter (default: all)
  --sort string      relevance, alpha_asc, alpha_desc, richness or last_char (default: relevance)
  --limit int        Number of results (default: server default_limit)
  --offset int       Results to skip
  --output string    text, compact or json (default: text)

Import Flags:
  --config string    Config file path
  --server string    Server URL to reload after importing (default: none)

Favorite and Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Status output format: text or json (default: text)

Environment:
  ORDBOK_DATABASE_PATH, ORDBOK_PORT, ORDBOK_DEBUG override the config file; a .env file in the
  working directory is read first.

Examples:
  ordbok server
  ordbok import words.json idioms.csv
  ordbok search hund
  ordbok search --mode exact --output json katt
  ordbok search --type verb --sort az
  ordbok favorite add 42
  ordbok search --mode favorites
  ordbok status --output json`)
}
