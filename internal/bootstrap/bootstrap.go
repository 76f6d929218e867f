package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/config"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/corpus"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/usecase"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/chunking"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/extractor"
	densidx "github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/index/dense"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/index/sparse"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/llm/ollama"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/llm/openai"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/queue/nats"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/rerank/lexical"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/repository/postgres"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/resilience"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/infrastructure/storage/localfs"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/prompts"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Documents ports.DocumentRepository
	Sessions  ports.SessionRepository
	SessionUC ports.SessionManager
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	AskUC     ports.QuestionService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	documents := postgres.NewDocumentRepository(db)
	if err := documents.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	sessions := postgres.NewSessionRepository(db)
	if err := sessions.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure sessions schema: %w", err)
	}
	chunkRepo := postgres.NewChunkRepository(db)
	if err := chunkRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure chunks schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), log)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             log,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)

	models := []ports.LanguageModel{ollama.NewGenerator(ollamaClient)}
	if cfg.OpenAIAPIKey != "" {
		models = append(models, openai.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel))
	}

	denseIndex := densidx.NewIndex(embedder)
	corpora := corpus.NewStore(denseIndex, func() ports.KeywordIndex { return sparse.NewIndex() }, chunkRepo)

	promptSet, err := prompts.Load(cfg.PromptsPath)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	retriever := usecase.NewRetriever(embedder, lexical.New(), log, usecase.RetrievalTunables{
		DenseK:                 cfg.RetrievalDenseK,
		SparseK:                cfg.RetrievalSparseK,
		KeepSemantic:           cfg.RetrievalKeepSemantic,
		ExhaustiveCeiling:      cfg.RetrievalExhaustiveCeiling,
		DupThresholdSemantic:   cfg.DupThresholdSemantic,
		DupThresholdExhaustive: cfg.DupThresholdExhaustive,
	})

	chunker := chunking.NewSplitter(cfg.ChunkProseSize, cfg.ChunkStructuredSize, cfg.ChunkOverlap)
	extract := extractor.NewExtractor(storage)

	sessionUC := usecase.NewSessionUseCase(sessions, corpora)
	ingestUC := usecase.NewIngestDocumentUseCase(documents, sessions, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(documents, extract, chunker, embedder, chunkRepo)
	askUC := usecase.NewAskPipeline(
		sessions,
		corpora,
		retriever,
		models,
		promptSet,
		log,
		time.Duration(cfg.GenerateTimeoutSeconds)*time.Second,
	)

	return &App{
		Config: cfg,

		Queue:     queue,
		Documents: documents,
		Sessions:  sessions,
		SessionUC: sessionUC,
		IngestUC:  ingestUC,
		ProcessUC: processUC,
		AskUC:     askUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
