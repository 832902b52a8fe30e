// Package config provides configuration loading and structs for the kotae server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`
	UploadDir     string `yaml:"upload_dir"`
	AskTimeoutSec int    `yaml:"ask_timeout_sec"`
}

// StorageConfig holds the ingestion ledger and vector index locations.
type StorageConfig struct {
	// DatabasePath is the SQLite DSN of the ingestion ledger. ":memory:" keeps it in-process.
	DatabasePath string `yaml:"database_path"`
	// VectorIndexType selects the vector backend: "memory" or "chromem".
	VectorIndexType string `yaml:"vector_index_type"`
	// ChromemPath, when set, makes the chromem backend persist to this directory.
	ChromemPath string `yaml:"chromem_path"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider is one of "mock", "ollama", "langchain-ollama", "openai", "onnx".
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	BatchSize  int    `yaml:"batch_size"`
	CacheSize  int    `yaml:"cache_size"`
}

// GenerationConfig holds text-generation provider settings.
type GenerationConfig struct {
	// Provider is one of "ollama", "langchain-ollama", "openai", "extractive".
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	StopMarker  string  `yaml:"stop_marker"`
}

// ChunkingConfig holds chunker settings (sizes in bytes of normalized text).
// ChunkOverlap is a pointer so an explicit 0 is kept.
type ChunkingConfig struct {
	MaxChunkSize int  `yaml:"max_chunk_size"`
	ChunkOverlap *int `yaml:"chunk_overlap,omitempty"`
}

// Overlap returns the configured overlap, or DefaultChunkOverlap when unset.
func (c ChunkingConfig) Overlap() int {
	if c.ChunkOverlap != nil {
		return *c.ChunkOverlap
	}
	return DefaultChunkOverlap
}

// RetrievalConfig holds search and re-ranking settings. The rerank settings
// are pointers because 0 is a meaningful value for each of them.
type RetrievalConfig struct {
	TopK               int      `yaml:"top_k"`
	SimilarityFloor    *float64 `yaml:"similarity_floor,omitempty"`
	RerankLengthCap    *float64 `yaml:"rerank_length_cap,omitempty"`
	RerankWordCountCap *float64 `yaml:"rerank_wordcount_cap,omitempty"`
	InsertBatchSize    int      `yaml:"insert_batch_size"`
}

// Floor returns the similarity floor, or DefaultSimilarityFloor when unset.
func (r RetrievalConfig) Floor() float64 {
	return floatOr(r.SimilarityFloor, DefaultSimilarityFloor)
}

// LengthCap returns the length bonus cap, or DefaultRerankLengthCap when unset.
func (r RetrievalConfig) LengthCap() float64 {
	return floatOr(r.RerankLengthCap, DefaultRerankLengthCap)
}

// WordCountCap returns the word-count bonus cap, or DefaultRerankWordCountCap when unset.
func (r RetrievalConfig) WordCountCap() float64 {
	return floatOr(r.RerankWordCountCap, DefaultRerankWordCountCap)
}

func floatOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Validate reports settings that would make the pipeline misbehave.
func (c *Config) Validate() error {
	if c.Chunking.MaxChunkSize <= 0 {
		return fmt.Errorf("chunking.max_chunk_size must be positive")
	}
	if overlap := c.Chunking.Overlap(); overlap < 0 || overlap >= c.Chunking.MaxChunkSize {
		return fmt.Errorf("chunking.chunk_overlap must be in [0, max_chunk_size)")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}
	return nil
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	if cfg.Storage.DatabasePath != memoryDSN {
		cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	}
	if cfg.Storage.ChromemPath != "" {
		cfg.Storage.ChromemPath = expandPath(cfg.Storage.ChromemPath, configDir)
	}
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	cfg.Server.UploadDir = expandPath(cfg.Server.UploadDir, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
