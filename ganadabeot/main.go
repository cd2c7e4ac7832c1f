package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ganadabeot/ganadabeot/config"
	"ganadabeot/ganadabeot/controllers"
	"ganadabeot/ganadabeot/routes"
	"ganadabeot/ganadabeot/services/assistant"
	"ganadabeot/ganadabeot/services/metrics"
	"ganadabeot/ganadabeot/sources/psql"
	"ganadabeot/ganadabeot/sources/psql/dao"
	"ganadabeot/ganadabeot/sources/session"
	"ganadabeot/ganadabeot/sources/storage"
	"ganadabeot/ganadabeot/utils/logging"
	"ganadabeot/ganadabeot/views"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	if err := logging.InitLogger(cfg.LogDir); err != nil {
		os.Stderr.WriteString("logger init failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logging.Sync()

	renderer, err := views.NewRenderer()
	if err != nil {
		logging.ErrorLogger.Fatal("template parse error", zap.Error(err))
	}

	var handler http.Handler
	var cleanup func()
	if err := cfg.Validate(); err != nil {
		problems := strings.Split(err.Error(), "\n")
		logging.ErrorLogger.Error("invalid configuration, serving error page", zap.Strings("problems", problems))
		handler = routes.ConfigErrorHandler(renderer, problems)
		cleanup = func() {}
	} else {
		handler, cleanup = buildApp(cfg, renderer)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorLogger.Fatal("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}

// buildApp wires the full application. The returned func releases
// background work and connections.
func buildApp(cfg config.Config, renderer *views.Renderer) (http.Handler, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	closers := []func(){cancel}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		logging.ErrorLogger.Fatal("prompt profile error", zap.String("path", cfg.PromptsFile), zap.Error(err))
	}

	signingKey, err := controllers.SigningKey(cfg.SessionSecret)
	if err != nil {
		logging.ErrorLogger.Fatal("session key error", zap.Error(err))
	}
	if cfg.SessionSecret == "" {
		logging.AppLogger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	store := session.NewStore(cfg.SessionTTL)
	go store.Run(ctx, time.Minute, func(removed, remaining int) {
		m.ActiveSessions.Set(float64(remaining))
		if removed > 0 {
			logging.AppLogger.Info("expired sessions removed", zap.Int("removed", removed), zap.Int("remaining", remaining))
		}
	})

	client := assistant.NewClient(assistant.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), assistant.Options{
		PollInterval:    cfg.PollInterval,
		PollMaxInterval: cfg.PollMaxInterval,
		Timeout:         cfg.RunTimeout,
		MaxPolls:        cfg.MaxPolls,
		DeleteThreads:   cfg.DeleteThreads,
		Metrics:         m,
	})

	var recorder controllers.ExchangeRecorder
	if cfg.ExchangeLogEnabled() {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := psql.NewDatabase(dbCtx, cfg)
		dbCancel()
		if err != nil {
			logging.ErrorLogger.Fatal("database connection error", zap.Error(err))
		}
		closers = append(closers, db.Close)
		recorder = dao.NewExchangeDAO(db.DB)
	}

	guideline := guidelineSource(ctx, cfg)

	h := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Sessions:       store,
		SigningKey:     signingKey,
		Auth:           controllers.NewAuthController(cfg.AppPassword, signingKey, cfg.SessionTTL, m),
		Writing:        controllers.NewWritingController(client, prompts, cfg.AssistantID, recorder),
		Guideline:      controllers.NewGuidelineController(guideline, cfg.GuidelineFilename),
		Health:         controllers.NewHealthController(store),
		Views:          renderer,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})
	return h, cleanup
}

// guidelineSource prefers MinIO, then a local file.
func guidelineSource(ctx context.Context, cfg config.Config) storage.GuidelineSource {
	if cfg.MinIOEndpoint != "" {
		mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		mc, err := storage.NewMinIOClient(mctx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error, guideline download disabled", zap.Error(err))
			return storage.NoGuidelineSource{}
		}
		return &storage.MinIOGuidelineSource{Client: mc, Key: cfg.GuidelineObjectKey, Filename: cfg.GuidelineFilename}
	}
	if cfg.GuidelinePath != "" {
		return storage.NewFileGuidelineSource(cfg.GuidelinePath, cfg.GuidelineFilename)
	}
	logging.AppLogger.Warn("no guideline document configured")
	return storage.NoGuidelineSource{}
}
