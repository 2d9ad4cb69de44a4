package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/AnnaJiju/WeatherSpeak/internal/config"
	"github.com/AnnaJiju/WeatherSpeak/internal/delivery"
	"github.com/AnnaJiju/WeatherSpeak/internal/error_notificator"
	"github.com/AnnaJiju/WeatherSpeak/internal/metrics"
	"github.com/AnnaJiju/WeatherSpeak/internal/pipeline"
	"github.com/AnnaJiju/WeatherSpeak/internal/speech"
	"github.com/AnnaJiju/WeatherSpeak/internal/storage"
	"github.com/AnnaJiju/WeatherSpeak/internal/weather"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const serviceName = "weatherspeak"

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	_ = godotenv.Load()

	configPath := flag.String("config", "", "optional YAML config file; environment wins")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = level
	baseLogger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	rec := metrics.NewRecorder()

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	var mirror storage.ObjectClient
	if cfg.Storage.MirrorEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mirror, err = storage.NewS3Client(ctx, cfg.Storage)
		cancel()
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
	}

	store := storage.NewStore(cfg.Storage.ResponsesDir, mirror)
	created, err := store.EnsureDir()
	if err != nil {
		log.Fatalf("responses dir: %v", err)
	}

	cwd, _ := os.Getwd()
	absResponses, _ := filepath.Abs(store.Dir())
	baseLogger.Info("storage ready",
		zap.String("cwd", cwd),
		zap.String("responses_dir", absResponses),
		zap.Bool("created", created),
		zap.Bool("mirror", mirror != nil),
	)

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var errInfra error_notificator.Notificator = error_notificator.Noop{}
	if cfg.Alerts.AlertsEnabled() {
		tg, err := error_notificator.NewTelegramInfra(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID, serviceName)
		if err != nil {
			log.Fatalf("failed to init alert bot: %v", err)
		}
		errInfra = tg
	}
	errService := error_notificator.NewService(errInfra, baseLogger)

	// =========================================================================
	// CLIENTS (WEATHER / STT / TTS)
	// =========================================================================

	weatherClient := weather.NewOpenWeatherClient(
		cfg.Weather.APIKey,
		cfg.Weather.BaseURL,
		time.Duration(cfg.Weather.TimeoutSeconds)*time.Second,
		rec,
	)
	if cfg.Weather.APIKey == "" {
		baseLogger.Warn("weather credential not set; lookups will fail until it is configured")
	}

	speechService, err := speech.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to init speech engines: %v", err)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	voice := pipeline.New(
		speechService,
		weatherClient,
		store,
		pipeline.Options{TempDir: cfg.Storage.TempDir, Format: cfg.TTS.Format},
		rec,
		baseLogger,
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	handler := delivery.NewHandler(
		voice,
		weatherClient,
		errService,
		baseLogger,
		int64(cfg.HTTP.MaxUploadMB)<<20,
	)
	r := delivery.NewRouter(handler, rec, baseLogger, delivery.RouteOptions{
		ResponsesDir:       store.Dir(),
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + strconv.Itoa(cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			baseLogger.Error("shutdown", zap.Error(err))
		}
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr + " (stt=" + cfg.STT.Mode + ", tts=" + cfg.TTS.Mode + ")",
		Service: serviceName,
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
