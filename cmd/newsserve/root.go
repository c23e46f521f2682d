package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/newsinsight/newsserve/internal/logger"
	"github.com/newsinsight/newsserve/internal/proxy"
	"github.com/newsinsight/newsserve/internal/storage"
	"github.com/newsinsight/newsserve/pkg/config"
	"github.com/newsinsight/newsserve/pkg/suggest"
)

var (
	configPath string
	storePath  string
	debugMode  bool

	// cfg is loaded once in PersistentPreRunE.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "newsserve",
	Short: "News analytics API with category and topic autocomplete",
	Long: `newsserve serves a news browsing dataset over HTTP, exposes agent tools
over MCP and completes category and topic names from a prefix.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.SetVersionTemplate("newsserve version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&storePath, "db", "", "SQLite database path (overrides store.path)")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Toggle debug logging")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, path, err := config.LoadConfigWithPriority(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if storePath != "" {
		c.Store.Path = storePath
	}

	level := c.Log.Level
	if debugMode {
		level = "debug"
	}
	logger.Setup(level, c.Log.Format)
	log.Debugf("Using config file: %s", config.GetActiveConfigPath(path))

	cfg = c
	return nil
}

// openStore opens the configured database behind the article cache.
func openStore() (*storage.CachedStorage, error) {
	db, err := storage.NewSQLiteStorage(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
	}
	store, err := storage.NewCachedStorage(db, cfg.Cache.NewsCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// newSuggestService wires both fields to their distinct-value queries.
func newSuggestService(store storage.NewsReader) *suggest.Service {
	return suggest.NewService(map[suggest.Field]suggest.Loader{
		suggest.FieldCategory: store.DistinctCategories,
		suggest.FieldTopic:    store.DistinctTopics,
	}, suggest.WithMaxCachedPrefix(cfg.Matcher.MaxCachedPrefixLen))
}

func newProxyClient() *proxy.Client {
	retry := proxy.DefaultRetryConfig()
	if cfg.Proxy.MaxRetries > 0 {
		retry.MaxRetries = cfg.Proxy.MaxRetries
	}
	return proxy.New(proxy.Config{
		Endpoint: cfg.Proxy.Endpoint,
		APIKey:   cfg.Proxy.APIKey,
		Model:    cfg.Proxy.Model,
		Timeout:  cfg.Proxy.Timeout.Duration,
		Retry:    retry,
	})
}
