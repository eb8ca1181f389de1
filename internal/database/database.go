package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

const retryInterval = 5 * time.Second

// Connect connects to the database with a retry mechanism.
func Connect(url string, maxRetries int, log zerolog.Logger) (*sql.DB, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL URL parse edilemedi: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	finalURL := stdlib.RegisterConnConfig(config.ConnConfig)

	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 1; ; attempt++ {
		db, err := open(finalURL)
		if err == nil {
			log.Info().Int("attempt", attempt).Msg("Veritabanına bağlantı başarılı (Simple Protocol Mode).")
			return db, nil
		}
		if attempt >= maxRetries {
			return nil, fmt.Errorf("veritabanına bağlanılamadı (%d deneme): %w", maxRetries, err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", maxRetries).Msg("Veritabanına bağlanılamadı, tekrar denenecek...")
		time.Sleep(retryInterval)
	}
}

// open returns a pinged handle, closing it again when the ping fails.
func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(10)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
