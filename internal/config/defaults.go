package config

const memoryDSN = ":memory:"

// Defaults for settings where zero is a valid explicit value.
const (
	DefaultChunkOverlap       = 50
	DefaultSimilarityFloor    = 0.3
	DefaultRerankLengthCap    = 0.1
	DefaultRerankWordCountCap = 0.05
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "./data"
	}
	if cfg.Server.AskTimeoutSec == 0 {
		cfg.Server.AskTimeoutSec = 120
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = memoryDSN
	}
	if cfg.Storage.VectorIndexType == "" {
		cfg.Storage.VectorIndexType = "memory"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-minilm"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = "ollama"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "stablelm-zephyr:3b"
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 256
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.2
	}
	if cfg.Generation.TopP == 0 {
		cfg.Generation.TopP = 0.9
	}
	if cfg.Generation.StopMarker == "" {
		cfg.Generation.StopMarker = "[/INST]"
	}
	if cfg.Chunking.MaxChunkSize == 0 {
		cfg.Chunking.MaxChunkSize = 512
	}
	if cfg.Chunking.ChunkOverlap == nil {
		overlap := DefaultChunkOverlap
		cfg.Chunking.ChunkOverlap = &overlap
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	setFloat(&cfg.Retrieval.SimilarityFloor, DefaultSimilarityFloor)
	setFloat(&cfg.Retrieval.RerankLengthCap, DefaultRerankLengthCap)
	setFloat(&cfg.Retrieval.RerankWordCountCap, DefaultRerankWordCountCap)
	if cfg.Retrieval.InsertBatchSize == 0 {
		cfg.Retrieval.InsertBatchSize = 100
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".docx", ".odt", ".rtf", ".xlsx", ".pptx", ".odp", ".ods", ".md", ".txt", ".rst"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}

func setFloat(field **float64, def float64) {
	if *field == nil {
		v := def
		*field = &v
	}
}
