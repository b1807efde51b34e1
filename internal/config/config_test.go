package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/furnilabs/furnireco/internal/domain"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Embedding.Dimensions != domain.DefaultDimensions {
		t.Errorf("expected Dimensions=%d, got %d", domain.DefaultDimensions, cfg.Embedding.Dimensions)
	}
	if cfg.Index.BatchSize != domain.DefaultBatchSize {
		t.Errorf("expected BatchSize=%d, got %d", domain.DefaultBatchSize, cfg.Index.BatchSize)
	}
	if cfg.Index.Name != "furniture-products" {
		t.Errorf("expected default index name, got %q", cfg.Index.Name)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Generation.MaxTokens != 60 {
		t.Errorf("expected MaxTokens=60, got %d", cfg.Generation.MaxTokens)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Embedding: EmbeddingConfig{Dimensions: 768},
		Index:     IndexConfig{Name: "custom", BatchSize: 25, HNSWM: 16, HNSWEFConstruct: 200},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("expected Dimensions=768, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Index.Name != "custom" || cfg.Index.BatchSize != 25 || cfg.Index.HNSWM != 16 {
		t.Errorf("index settings overridden: %+v", cfg.Index)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 0},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{Model: "all-MiniLM-L6-v2"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{}},
		Embedding: EmbeddingConfig{Model: "all-MiniLM-L6-v2"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingEmbeddingModel(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}
}

func TestValidate_GenerationNeedsModel(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 8080},
		Database:   DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding:  EmbeddingConfig{Model: "all-MiniLM-L6-v2"},
		Generation: GenerationConfig{Enabled: true},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when generation is enabled without a model")
	}

	cfg.Generation.Model = "flan-t5-base"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with a model set: %v", err)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	content := `
http:
  port: 8080
database:
  addrs: ["${FURNIRECO_TEST_REDIS_ADDR:-localhost:6379}"]
  password: "${FURNIRECO_TEST_REDIS_PASSWORD}"
embedding:
  model: all-MiniLM-L6-v2
  api_key: "${FURNIRECO_TEST_API_KEY:-fallback-key}"
`
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FURNIRECO_TEST_REDIS_PASSWORD", "s3cret")
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatal(err)
		}
	})

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addr = %q, want the ${VAR:-default} fallback", cfg.Database.Addrs[0])
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("password = %q, want the env value", cfg.Database.Password)
	}
	if cfg.Embedding.APIKey != "fallback-key" {
		t.Errorf("api key = %q, want the default", cfg.Embedding.APIKey)
	}
	if cfg.Embedding.Dimensions != domain.DefaultDimensions {
		t.Errorf("dimensions = %d, want the applied default", cfg.Embedding.Dimensions)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
