// Command server starts the AI Interview Coach HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	aicache "github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai"
	airel "github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai/real"
	aistub "github.com/fairyhunter13/ai-interview-coach/internal/adapter/ai/stub"
	httpserver "github.com/fairyhunter13/ai-interview-coach/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/repo/postgres"
	tikaext "github.com/fairyhunter13/ai-interview-coach/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-interview-coach/internal/app"
	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
	"github.com/fairyhunter13/ai-interview-coach/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// Infra: DB pool. The database container may come up after us, so
	// retry with exponential backoff before giving up.
	pool, err := connectDB(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		slog.Error("schema init failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Redis is optional; without it the reply cache is a pass-through.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid redis url", slog.Any("error", err))
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()
	}

	// Text generation gateway. Without an API key we run the deterministic
	// stub so the service stays usable in dev and tests.
	var gen domain.TextGenerator
	if cfg.OpenRouterAPIKey != "" {
		gen = airel.New(cfg)
	} else {
		slog.Warn("no generation API key configured; using stub client")
		gen = aistub.New()
	}
	gen = aicache.NewReplyCache(gen, rdb, cfg.ReplyCacheTTL)

	// Repositories
	resumeRepo := postgres.NewResumeRepo(pool)
	sessionRepo := postgres.NewSessionRepo(pool)

	// External text extractor (Apache Tika)
	ext := tikaext.New(cfg.TikaURL)

	// Usecases
	resumeSvc := usecase.NewResumeService(resumeRepo, ext)
	questionSvc := usecase.NewQuestionService(resumeRepo, sessionRepo, gen, cfg.DefaultNumQuestions)
	analyzerSvc := usecase.NewAnalyzerService(gen)
	interviewSvc := usecase.NewInterviewService(sessionRepo, analyzerSvc)
	convSvc := usecase.NewConversationService(gen, cfg.ChatModel, cfg.ContextTokenBudget)
	turnCtrl := usecase.NewTurnController(sessionRepo, convSvc, analyzerSvc, cfg.FollowUpLimit)

	dbCheck, redisCheck, tikaCheck := app.BuildReadinessChecks(cfg, pool, rdb)

	srv := httpserver.NewServer(cfg, resumeSvc, questionSvc, interviewSvc, turnCtrl, dbCheck, redisCheck, tikaCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

func connectDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		p, err := postgres.NewPool(ctx, dsn)
		if err != nil {
			slog.Warn("db connect attempt failed", slog.Any("error", err))
			return err
		}
		pool = p
		return nil
	}, backoff.WithContext(bo, ctx))
	return pool, err
}
