package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/audio"
	"languagecoach/internal/config"
	"languagecoach/internal/database"
	"languagecoach/internal/handlers"
	"languagecoach/internal/logging"
	"languagecoach/internal/metrics"
	"languagecoach/internal/repository"
	"languagecoach/internal/schedule"
	"languagecoach/internal/security"
	"languagecoach/internal/service"
	"languagecoach/internal/translate"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.WithField("type", cfg.DatabaseType).Info("Database connection established")

	// Run migrations
	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	m := metrics.New()

	// Initialize repositories and services
	progressRepo := repository.NewProgressRepository(db)
	progressService := service.NewProgressService(progressRepo, m, log)

	var ttsService *audio.TTSService
	if cfg.ServerTTSEnabled() {
		ttsService = audio.NewTTSService(cfg.TTSCacheDir, audio.NewGoogleFetcher(cfg.TTSTimeout), cfg.TLDFor, log)
		log.WithFields(logrus.Fields{"provider": cfg.TTSProvider, "cache": cfg.TTSCacheDir}).Info("Server TTS enabled")
	}

	digest := startDigest(ctx, cfg, progressService, log)
	if digest != nil {
		defer digest.Stop()
	}

	translator := newTranslator(cfg, log)

	limiter := security.NewRateLimiter(cfg.TTSRateLimit, cfg.TTSRateWindow)
	go limiter.RunCleanup(time.Hour, ctx.Done())
	translateLimiter := security.NewRateLimiter(cfg.TTSRateLimit, cfg.TTSRateWindow)
	go translateLimiter.RunCleanup(time.Hour, ctx.Done())

	handler := handlers.NewRouter(handlers.RouterConfig{
		Progress:         handlers.NewProgressHandler(progressService, ttsService, m, log),
		Middleware:       handlers.NewMiddleware(log, m),
		TTSLimiter:       limiter,
		Health:           handlers.Health(db, log),
		Metrics:          m.Handler(),
		Translate:        handlers.NewTranslateHandler(translator, m, log),
		TranslateLimiter: translateLimiter,
	})

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// startDigest schedules the daily digest email when SES and a recipient are configured
func startDigest(ctx context.Context, cfg *config.Config, progressService *service.ProgressService, log *logrus.Logger) *service.DigestService {
	if !cfg.DigestEnabled() {
		return nil
	}

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.EmailFrom, "Language Coach", log)
	if err != nil {
		log.WithError(err).Warn("Digest disabled: email service unavailable")
		return nil
	}

	digest, err := service.NewDigestService(progressService, emailService, cfg.DigestTo, cfg.DigestHourUT, schedule.Real{}, log)
	if err != nil {
		log.WithError(err).Warn("Digest disabled")
		return nil
	}
	digest.Start(ctx)
	log.WithFields(logrus.Fields{"to": cfg.DigestTo, "hour_utc": cfg.DigestHourUT}).Info("Daily digest scheduled")
	return digest
}

// newTranslator builds the lookup service. A missing vocabulary file leaves
// only the remote provider.
func newTranslator(cfg *config.Config, log *logrus.Logger) *translate.Service {
	vocab, err := translate.LoadVocabulary(cfg.VocabPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.WithField("path", cfg.VocabPath).Warn("Vocabulary not found, local translations disabled")
		vocab = translate.Vocabulary{}
	case err != nil:
		log.Fatalf("Failed to load vocabulary: %v", err)
	}

	provider := translate.ParseProvider(cfg.TranslateProvider)
	var fetcher translate.Fetcher
	if provider != translate.ProviderLocal {
		fetcher = translate.NewMyMemoryClient(cfg.TranslateTimeout)
	}
	log.WithFields(logrus.Fields{"provider": provider, "words": vocab.Words()}).Info("Translation enabled")
	return translate.NewService(vocab, provider, fetcher, log)
}
