package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/debunkbot/debunkbot/internal/config"
	"github.com/debunkbot/debunkbot/internal/handler"
	audiohandler "github.com/debunkbot/debunkbot/internal/handler/audio"
	chathandler "github.com/debunkbot/debunkbot/internal/handler/chat"
	"github.com/debunkbot/debunkbot/internal/service/ai"
	"github.com/debunkbot/debunkbot/internal/service/history"
	"github.com/debunkbot/debunkbot/internal/service/speech"
	"github.com/debunkbot/debunkbot/internal/service/speech/translatetts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dotenvErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet; this is the one place stderr is used raw.
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if dotenvErr != nil {
		logger.Info("no .env file loaded, using system environment only")
	}

	// A missing credential is operator-correctable and every chat request
	// would fail; refuse to start instead of serving errors.
	if !cfg.Upstream.Enabled() {
		logger.Fatal("GEMINI_API_KEY is required")
	}

	ledger, cleanup, err := buildLedger(cfg.History, logger)
	if err != nil {
		logger.Fatal("failed to initialize history store", zap.Error(err), zap.String("dbPath", cfg.History.DBPath))
	}
	defer cleanup()

	ttsClient := translatetts.New(translatetts.Config{
		Language: cfg.Speech.Language,
		Slow:     cfg.Speech.Slow,
	})

	var provider speech.SegmentProvider
	if cfg.Speech.Enabled {
		provider = ttsClient
	} else {
		logger.Info("speech synthesis disabled by configuration")
	}
	synthesizer := speech.NewSynthesizer(provider, logger)

	gate := ai.NewRateGate(cfg.Upstream.MinInterval)
	client := ai.NewClient(cfg.Upstream, logger)
	pipeline := ai.NewPipeline(client, synthesizer, ledger, gate, cfg.History.WindowSize, logger)

	chatHandler := chathandler.New(pipeline, ledger, logger)
	audioHandler := audiohandler.New(hostOf(ttsClient.Host()), 15*time.Second, logger)

	router := handler.NewRouter(chatHandler, audioHandler, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func newLogger(level string) *zap.Logger {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func buildLedger(cfg config.HistoryConfig, logger *zap.Logger) (history.Ledger, func(), error) {
	if cfg.DBPath == "" {
		logger.Info("DB_PATH not set, keeping history in memory")
		return history.NewMemoryLedger(), func() {}, nil
	}

	store, err := history.NewSQLiteLedger(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("history store opened", zap.String("dbPath", cfg.DBPath))
	return store, func() { store.Close() }, nil
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("debunkbot backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
