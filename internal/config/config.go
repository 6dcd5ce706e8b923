package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string `env:"API_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CorpusDir  string `env:"CORPUS_DIR" envDefault:"./data"`
	PolicyFile string `env:"POLICY_FILE"`
	UsersFile  string `env:"USERS_FILE"`

	OllamaURL        string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaGenModel   string        `env:"OLLAMA_GEN_MODEL" envDefault:"llama3.1:8b"`
	OllamaEmbedModel string        `env:"OLLAMA_EMBED_MODEL" envDefault:"nomic-embed-text"`
	ProviderTimeout  time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"120s"`

	QdrantURL        string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
	QdrantCollection string `env:"QDRANT_COLLECTION" envDefault:"finsolve_chatbot"`

	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"100"`
	RAGTopK      int `env:"RAG_TOP_K" envDefault:"5"`

	NATSURL     string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"corpus.reindex"`

	PostgresDSN  string `env:"POSTGRES_DSN"`
	AuditEnabled bool   `env:"AUDIT_ENABLED" envDefault:"false"`

	AdminRoles []string `env:"ADMIN_ROLES" envSeparator:"," envDefault:"c_level"`

	APIRateLimitRPS   int `env:"API_RATE_LIMIT_RPS" envDefault:"10"`
	APIRateLimitBurst int `env:"API_RATE_LIMIT_BURST" envDefault:"20"`

	WorkerMetricsPort string `env:"WORKER_METRICS_PORT" envDefault:"9090"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return Config{}, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}
	return cfg, nil
}
