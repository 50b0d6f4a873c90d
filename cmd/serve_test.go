package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"llm-playground/internal/catalog"
	"llm-playground/internal/config"
	"llm-playground/internal/models"
)

func TestExecuteUnknownCommand(t *testing.T) {
	err := Execute(context.Background(), []string{"deploy"})
	if err == nil || !strings.Contains(err.Error(), `unknown command "deploy"`) {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("X_TITLE", "")

	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("X_TITLE=From Env File\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	os.Unsetenv("X_TITLE")
	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile() error = %v", err)
	}
	if got := os.Getenv("X_TITLE"); got != "From Env File" {
		t.Errorf("X_TITLE = %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LoggingConfig{Level: "WARN", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"message":"shown"`) {
		t.Errorf("log output = %q", buf.String())
	}

	if _, err := newLogger(config.LoggingConfig{Level: "loud"}, &buf); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewCatalogCache(t *testing.T) {
	ctx := context.Background()
	logger, _ := newLogger(config.LoggingConfig{Level: "error", Format: "json"}, &bytes.Buffer{})

	cache, closeCache, err := newCatalogCache(ctx, config.CatalogConfig{}, logger)
	if err != nil || cache != nil {
		t.Errorf("zero TTL should disable caching, got %v, %v", cache, err)
	}
	closeCache()

	cache, closeCache, err = newCatalogCache(ctx, config.CatalogConfig{CacheTTL: time.Minute}, logger)
	if err != nil {
		t.Fatalf("memory cache error = %v", err)
	}
	if _, ok := cache.(*catalog.MemoryCache); !ok {
		t.Errorf("cache = %T, want *catalog.MemoryCache", cache)
	}
	closeCache()

	mr := miniredis.RunT(t)
	cache, closeCache, err = newCatalogCache(ctx, config.CatalogConfig{CacheTTL: time.Minute, RedisURL: "redis://" + mr.Addr()}, logger)
	if err != nil {
		t.Fatalf("redis cache error = %v", err)
	}
	defer closeCache()

	if err := cache.Set(ctx, []models.RawModel{{ID: "a/b"}}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists(redisKeyPrefix + "catalog:models") {
		t.Error("expected prefixed catalog key in redis")
	}
}

func TestNewRecommendedStore(t *testing.T) {
	logger, _ := newLogger(config.LoggingConfig{Level: "error", Format: "json"}, &bytes.Buffer{})

	store, stop, err := newRecommendedStore(config.CatalogConfig{}, logger)
	if err != nil {
		t.Fatalf("newRecommendedStore() error = %v", err)
	}
	stop()
	if len(store.Get()[models.CategoryText]) == 0 {
		t.Error("expected built-in recommendations")
	}

	path := filepath.Join(t.TempDir(), "recommended.yaml")
	if err := os.WriteFile(path, []byte("audio:\n  - id: openai/gpt-4o-audio-preview\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, stop, err = newRecommendedStore(config.CatalogConfig{RecommendedPath: path}, logger)
	if err != nil {
		t.Fatalf("newRecommendedStore(file) error = %v", err)
	}
	defer stop()
	if got := store.Get()[models.CategoryAudio]; len(got) != 1 || got[0].Name != "gpt-4o-audio-preview" {
		t.Errorf("audio = %v", got)
	}
}
