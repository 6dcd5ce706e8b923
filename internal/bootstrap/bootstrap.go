package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	httpadapter "github.com/finsolve/knowledge-assistant/internal/adapters/http"
	"github.com/finsolve/knowledge-assistant/internal/config"
	"github.com/finsolve/knowledge-assistant/internal/core/policy"
	"github.com/finsolve/knowledge-assistant/internal/core/ports"
	"github.com/finsolve/knowledge-assistant/internal/core/usecase"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/chunking"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/llm/ollama"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/loader"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/queue/nats"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/repository/postgres"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/resilience"
	"github.com/finsolve/knowledge-assistant/internal/infrastructure/vector/qdrant"
)

// App holds the wired components shared by the API and the ingest worker.
type App struct {
	Config config.Config
	Log    *slog.Logger

	Policy   *policy.AccessPolicy
	Auth     *httpadapter.Authenticator
	Queue    *nats.Queue
	VectorDB ports.VectorStore
	Audit    ports.AuditLog

	IngestUC ports.CorpusIngestor
	AnswerUC ports.AnswerService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	accessPolicy, err := loadPolicy(cfg)
	if err != nil {
		return nil, err
	}
	auth, err := loadUsers(cfg)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, cfg.ProviderTimeout)
	embedder := ollama.NewResilientEmbedder(ollama.NewEmbedder(ollamaClient), executor)
	generator := ollama.NewResilientGenerator(ollama.NewGenerator(ollamaClient), executor)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	walker := loader.NewWalker(cfg.CorpusDir, log)
	splitter := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             log,
	})
	if err != nil {
		return nil, fmt.Errorf("init reindex queue: %w", err)
	}

	app := &App{
		Config:   cfg,
		Log:      log,
		Policy:   accessPolicy,
		Auth:     auth,
		Queue:    queue,
		VectorDB: vectorDB,
		IngestUC: usecase.NewIngestCorpusUseCase(walker, splitter, embedder, vectorDB, log),
		AnswerUC: usecase.NewAnswerUseCase(accessPolicy, usecase.NewRetriever(accessPolicy, embedder, vectorDB), generator),
		closeFn:  queue.Close,
	}

	if cfg.AuditEnabled {
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("audit enabled but POSTGRES_DSN is empty")
		}
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewAuditRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure audit schema: %w", err)
		}
		app.Audit = repo
		app.closeFn = func() {
			queue.Close()
			_ = db.Close()
		}
	}

	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func loadPolicy(cfg config.Config) (*policy.AccessPolicy, error) {
	if cfg.PolicyFile == "" {
		return policy.Default(), nil
	}
	p, err := policy.LoadFile(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load access policy: %w", err)
	}
	return p, nil
}

func loadUsers(cfg config.Config) (*httpadapter.Authenticator, error) {
	if cfg.UsersFile == "" {
		return httpadapter.NewAuthenticator(defaultUsers()), nil
	}
	auth, err := httpadapter.LoadUsersFile(cfg.UsersFile)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return auth, nil
}

// defaultUsers is the built-in demo roster, used when no users file is
// configured. Production deployments set USERS_FILE.
func defaultUsers() map[string]struct{ Password, Role string } {
	return map[string]struct{ Password, Role string }{
		"Tony":    {Password: "password123", Role: "engineering"},
		"Bruce":   {Password: "securepass", Role: "marketing"},
		"Sam":     {Password: "financepass", Role: "finance"},
		"Peter":   {Password: "pete123", Role: "engineering"},
		"Sid":     {Password: "sidpass123", Role: "marketing"},
		"Natasha": {Password: "hrpass123", Role: "hr"},
		"Clark":   {Password: "clevelpass", Role: "c_level"},
		"Eve":     {Password: "emppass", Role: "employee"},
	}
}
