// sentiric-contact-resolver/internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/sentiric/sentiric-contact-resolver/internal/config"
	"github.com/sentiric/sentiric-contact-resolver/internal/database"
	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
	"github.com/sentiric/sentiric-contact-resolver/internal/directory/cache"
	"github.com/sentiric/sentiric-contact-resolver/internal/directory/memory"
	"github.com/sentiric/sentiric-contact-resolver/internal/directory/postgres"
	"github.com/sentiric/sentiric-contact-resolver/internal/directory/remote"
	"github.com/sentiric/sentiric-contact-resolver/internal/l10n"
	"github.com/sentiric/sentiric-contact-resolver/internal/logger"
	"github.com/sentiric/sentiric-contact-resolver/internal/metrics"
	"github.com/sentiric/sentiric-contact-resolver/internal/resolver"
	"github.com/sentiric/sentiric-contact-resolver/internal/server"
)

type App struct {
	Cfg *config.Config
	Log zerolog.Logger

	closers []io.Closer
}

func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	return &App{Cfg: cfg, Log: log}
}

func (a *App) Run() {
	defer a.closeAll()

	// 1. Altyapı Bağlantısı
	dir, err := a.buildDirectory(context.Background())
	if err != nil {
		a.Log.Error().Err(err).Str("backend", a.Cfg.DirectoryBackend).Msg("Dizin altyapısı kurulamadı")
		return
	}

	// 2. DI: Directory -> Resolver -> Handler
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	bundle, err := l10n.Load(a.Cfg.DefaultLanguage)
	if err != nil {
		a.Log.Error().Err(err).Msg("Yerelleştirme katalogları yüklenemedi")
		return
	}
	a.Log.Info().Strs("languages", bundle.Languages()).Str("default", a.Cfg.DefaultLanguage).Msg("Yerelleştirme katalogları yüklendi")

	res := resolver.New(dir, a.Log,
		resolver.WithMetrics(m),
		resolver.WithMaxConcurrentQueries(a.Cfg.MaxConcurrentQueries),
	)

	// 3. Server Katmanı
	handler := server.NewHandler(res, bundle, a.Cfg.ResolveTimeout, a.Log)
	httpServer := server.NewHTTPServer(a.Cfg.HttpPort, handler.Routes(registry))

	// 4. Sunucuyu Başlat
	serveErr := make(chan error, 1)
	go func() {
		a.Log.Info().Str("port", a.Cfg.HttpPort).Msg("HTTP sunucusu dinleniyor")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 5. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	if err := a.waitForShutdown(httpServer, quit, serveErr); err != nil {
		a.Log.Error().Err(err).Msg("HTTP sunucusu başlatılamadı")
	}
}

// buildDirectory selects the configured backend and wraps it with the Redis
// cache when REDIS_URL is set.
func (a *App) buildDirectory(ctx context.Context) (directory.Client, error) {
	var dir directory.Client

	switch a.Cfg.DirectoryBackend {
	case config.BackendMemory:
		store := memory.New(memory.WithPhoneMatching(a.Cfg.DefaultCountryCode, a.Cfg.PhoneMatchDigits))
		if a.Cfg.DirectorySeedPath != "" {
			if _, err := store.LoadSeedFile(a.Cfg.DirectorySeedPath); err != nil {
				return nil, err
			}
		}
		a.Log.Warn().
			Str("seed", a.Cfg.DirectorySeedPath).
			Int("records", store.Len()).
			Msg("Bellek içi dizin kullanılıyor; kayıtlar kalıcı değil")
		dir = store
	case config.BackendPostgres:
		db, err := database.Connect(a.Cfg.DatabaseURL, a.Cfg.MaxDBRetries, a.Log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		dir = postgres.NewPostgresDirectory(db, a.Cfg.DefaultCountryCode, a.Cfg.PhoneMatchDigits, a.Log)
	case config.BackendGRPC:
		rd, err := remote.Dial(a.Cfg.UserServiceURL, remote.TLSFiles{
			CertPath: a.Cfg.CertPath,
			KeyPath:  a.Cfg.KeyPath,
			CaPath:   a.Cfg.CaPath,
		}, a.Cfg.DefaultCountryCode, a.Log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rd)
		dir = rd
	default:
		return nil, fmt.Errorf("bilinmeyen dizin: %q", a.Cfg.DirectoryBackend)
	}

	if a.Cfg.RedisURL == "" {
		return dir, nil
	}
	rdb, err := cache.Connect(ctx, a.Cfg.RedisURL)
	if err != nil {
		a.Log.Warn().Err(err).Msg("Redis önbelleği devre dışı")
		return dir, nil
	}
	a.closers = append(a.closers, rdb)
	a.Log.Info().Dur("ttl", a.Cfg.CacheTTL).Msg("Dizin önbelleği etkin")
	return cache.New(dir, rdb, a.Cfg.CacheTTL, a.Log), nil
}

// waitForShutdown blocks until a signal arrives or the listener fails. A
// listener error is returned so Run unwinds through its deferred cleanup.
func (a *App) waitForShutdown(httpSrv *http.Server, quit <-chan os.Signal, serveErr <-chan error) error {
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	a.Log.Warn().Str("event", logger.EventSystemShutdown).Msg("Kapatma sinyali alındı, servisler durduruluyor...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		a.Log.Error().Err(err).Msg("HTTP sunucusu düzgün kapatılamadı.")
	} else {
		a.Log.Info().Msg("HTTP sunucusu durduruldu.")
	}

	a.Log.Info().Msg("Servis başarıyla durduruldu.")
	return nil
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Log.Warn().Err(err).Msg("Kaynak kapatılamadı")
		}
	}
}
