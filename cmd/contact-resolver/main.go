// sentiric-contact-resolver/cmd/contact-resolver/main.go
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/sentiric/sentiric-contact-resolver/internal/app"
	"github.com/sentiric/sentiric-contact-resolver/internal/config"
	"github.com/sentiric/sentiric-contact-resolver/internal/logger"
)

var (
	ServiceVersion string
	GitCommit      string
	BuildDate      string
)

const serviceName = "contact-resolver"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Kritik Hata: Konfigürasyon yüklenemedi: %v\n", err)
		os.Exit(1)
	}
	if ServiceVersion != "" {
		cfg.ServiceVersion = ServiceVersion
	}

	log := logger.New(
		serviceName,
		cfg.ServiceVersion,
		cfg.Env,
		cfg.NodeHostname,
		cfg.LogLevel,
		cfg.LogFormat,
	)

	log.Info().
		Str("event", logger.EventSystemStartup).
		Dict("attributes", zerolog.Dict().
			Str("commit", GitCommit).
			Str("build_date", BuildDate).
			Str("profile", cfg.Env).
			Str("directory_backend", cfg.DirectoryBackend)).
		Msg("🚀 Sentiric Contact Resolver başlatılıyor (SUTS v4.0)...")

	application := app.NewApp(cfg, log)
	application.Run()
}
