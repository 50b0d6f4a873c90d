package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"llm-playground/internal/catalog"
	"llm-playground/internal/config"
	providerfactory "llm-playground/internal/provider/factory"
	"llm-playground/internal/router"
	"llm-playground/internal/server"
	"llm-playground/internal/tokens"
)

const redisKeyPrefix = "llm-playground:"

const serveUsage = `Usage:
  llm-playground serve [--config <path>] [--port <port>] [--env-file <path>]

Flags:
  --config   string   Path to YAML configuration file (optional)
  --port     int      Override server port from configuration
  --env-file string   Environment file loaded before configuration (default ".env")`

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, serveUsage)
	}

	var cfgPath, envFile string
	var overridePort int
	fs.StringVar(&cfgPath, "config", "", "path to configuration file")
	fs.IntVar(&overridePort, "port", 0, "override server port")
	fs.StringVar(&envFile, "env-file", ".env", "path to environment file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse serve flags: %w", err)
	}

	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if overridePort != 0 {
		if overridePort <= 0 || overridePort > 65535 {
			return fmt.Errorf("port override %d must be a valid TCP port", overridePort)
		}
		cfg.Server.Port = overridePort
	}

	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	upstream, err := providerfactory.NewUpstream(cfg.Upstream, logger)
	if err != nil {
		return err
	}

	cache, closeCache, err := newCatalogCache(ctx, cfg.Catalog, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	recommended, stopWatcher, err := newRecommendedStore(cfg.Catalog, logger)
	if err != nil {
		return err
	}
	defer stopWatcher()

	counter := tokens.NewCounter()
	if logger.GetLevel() <= zerolog.DebugLevel {
		counter.Warm()
	}

	rt := router.New(upstream, router.Options{
		Cache:       cache,
		Recommended: recommended,
		Tokens:      counter,
		Timeout:     cfg.Upstream.RequestTimeout,
		Logger:      logger,
	})

	srv, err := server.New(cfg, rt, logger)
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

func newLogger(cfg config.LoggingConfig, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
	}

	if cfg.ConsoleLogs() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// newCatalogCache returns a Redis cache when a URL is configured and an in-process one
// otherwise. A zero TTL disables caching.
func newCatalogCache(ctx context.Context, cfg config.CatalogConfig, logger zerolog.Logger) (catalog.Cache, func(), error) {
	noop := func() {}
	if cfg.CacheTTL == 0 {
		return nil, noop, nil
	}

	if cfg.RedisURL == "" {
		return catalog.NewMemoryCache(cfg.CacheTTL), noop, nil
	}

	rdb, err := catalog.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, noop, err
	}
	logger.Info().Dur("ttl", cfg.CacheTTL).Msg("Catalog cache backed by Redis")

	return catalog.NewRedisCache(rdb, redisKeyPrefix, cfg.CacheTTL), func() { rdb.Close() }, nil
}

func newRecommendedStore(cfg config.CatalogConfig, logger zerolog.Logger) (*catalog.RecommendedStore, func(), error) {
	noop := func() {}
	if cfg.RecommendedPath == "" {
		return catalog.NewRecommendedStore(catalog.DefaultRecommended()), noop, nil
	}

	list, err := catalog.LoadRecommended(cfg.RecommendedPath)
	if err != nil {
		return nil, noop, err
	}
	store := catalog.NewRecommendedStore(list)

	watcher, err := catalog.NewWatcher(cfg.RecommendedPath, store, logger.With().Str("component", "recommended").Logger())
	if err != nil {
		return nil, noop, fmt.Errorf("watch recommended models: %w", err)
	}
	watcher.Start()

	return store, watcher.Stop, nil
}
