package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/config"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/domain"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/ports"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/core/usecase"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/catalog"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/discovery"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/extractor/plaintext"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/judgment"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/judgment/prompt"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/llm/anthropic"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/llm/gemini"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/llm/ollama"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/queue/nats"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/repository/postgres"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/resilience"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/infrastructure/storage/localfs"
	"github.com/mark-aronson/purdue-syllabi-analyzer/internal/observability/metrics"
)

// App holds the adapters shared by every command. Judgment adapters are
// only built by Analyzer, so read-only commands need no API key.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Discoverer *discovery.Walker
	Store      *localfs.ResultStore
	Catalog    *catalog.ProgramFile

	MissingUC *usecase.MissingCoursesUseCase
	ReviewsUC *usecase.ReviewQueryService

	Metrics *metrics.BatchMetrics

	closers []func() error
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := localfs.NewResultStore(cfg.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("init result store: %w", err)
	}
	walker := discovery.NewWalker(cfg.SyllabiDir)
	programs := catalog.NewProgramFile(cfg.ProgramsFile)

	missingUC := usecase.NewMissingCoursesUseCase(programs, walker, localfs.NewMissingReports(cfg.MissingDir))
	reviewsUC := usecase.NewReviewQueryService(store, programs, missingUC)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Discoverer: walker,
		Store:      store,
		Catalog:    programs,
		MissingUC:  missingUC,
		ReviewsUC:  reviewsUC,
	}, nil
}

// Analyzer builds the batch orchestrator with the configured backend and
// optional commit observers.
func (a *App) Analyzer(ctx context.Context, progress func(domain.ItemEvent)) (*usecase.AnalyzeUseCase, error) {
	cfg := a.Config
	if err := cfg.Validate(); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate config", err)
	}

	system, err := prompt.LoadSystem(cfg.PromptPath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load system prompt", err)
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:          cfg.BreakerEnabled,
		BreakerMinRequests:      uint32(cfg.BreakerMinRequests),
		BreakerFailureRatio:     cfg.BreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second,
		BreakerHalfOpenMaxCalls: 1,
	}, a.Logger)

	client := judgment.NewClient(backend, plaintext.NewExtractor(), executor, judgment.Config{
		System:            system,
		RequestsPerMinute: cfg.JudgeRequestsPerMinute,
		Timeout:           time.Duration(cfg.JudgeTimeoutSeconds) * time.Second,
	}, a.Logger)

	a.Metrics = metrics.NewBatchMetrics("reviewer")

	a.Logger.Info("judgment_backend_ready", "backend", backend.Name(), "inline_documents", backend.SupportsInlineDocuments())

	return usecase.NewAnalyzeUseCase(a.Discoverer, client, a.Store, a.Catalog, usecase.AnalyzeHooks{
		Logger:    a.Logger,
		Metrics:   a.Metrics,
		Observers: a.observers(ctx, executor),
		Progress:  progress,
	}), nil
}

func newBackend(ctx context.Context, cfg config.Config) (ports.JudgmentBackend, error) {
	timeout := time.Duration(cfg.JudgeTimeoutSeconds) * time.Second

	switch cfg.JudgeBackend {
	case config.BackendAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:    cfg.AnthropicAPIKey,
			BaseURL:   cfg.AnthropicBaseURL,
			Model:     cfg.AnthropicModel,
			MaxTokens: cfg.AnthropicMaxTokens,
			Timeout:   timeout,
		})
	case config.BackendGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.GeminiModel,
			MaxTokens: int32(cfg.AnthropicMaxTokens),
			Timeout:   timeout,
		})
	case config.BackendOllama:
		return ollama.New(cfg.OllamaURL, cfg.OllamaModel, timeout), nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "judgment backend", fmt.Errorf("unknown backend %q", cfg.JudgeBackend))
	}
}

// observers connects the optional mirrors. An unreachable mirror is logged
// and skipped; the result files do not depend on it.
func (a *App) observers(ctx context.Context, executor *resilience.Executor) []ports.CommitObserver {
	var out []ports.CommitObserver

	if dsn := a.Config.ResultsPostgresDSN; dsn != "" {
		db, err := postgres.OpenDB(dsn)
		if err != nil {
			a.Logger.Warn("observer_disabled", "observer", "postgres", "error", err)
		} else {
			mirror := postgres.NewRecordMirror(db)
			if err := mirror.EnsureSchema(ctx); err != nil {
				a.Logger.Warn("observer_disabled", "observer", "postgres", "error", err)
				_ = db.Close()
			} else {
				out = append(out, mirror)
				a.closers = append(a.closers, db.Close)
			}
		}
	}

	if url := a.Config.NATSURL; url != "" {
		publisher, err := nats.NewPublisher(url, a.Config.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             a.Logger,
		})
		if err != nil {
			a.Logger.Warn("observer_disabled", "observer", "nats", "error", err)
		} else {
			out = append(out, publisher)
			a.closers = append(a.closers, publisher.Close)
		}
	}

	return out
}

// WriteMetrics dumps batch metrics when a textfile path is configured.
func (a *App) WriteMetrics() error {
	if a.Metrics == nil || a.Config.MetricsTextfile == "" {
		return nil
	}
	if err := a.Metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
