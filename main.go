package main

import (
	"os"
	"path/filepath"
	"time"

	"bedbot/internal/bot"
	"bedbot/internal/chessapi"
	"bedbot/internal/common"
	"bedbot/internal/config"
	"bedbot/internal/metrics"
	"bedbot/internal/store"
	"bedbot/internal/web"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func newLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger := newLogger(cfg.AppEnv)
	zlog.Logger = logger

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// Keepalive and metrics endpoint
	server := web.NewServer(logger)
	go func() {
		if err := server.Start(cfg.HTTPAddr); err != nil {
			logger.Error().Err(err).Msg("Keepalive server stopped")
		}
	}()

	// Remote tier of the stores; absent credentials degrade the stores
	// to local files only
	var remote store.BlobStore
	if cfg.Github.Token != "" && cfg.Github.Owner != "" && cfg.Github.Repo != "" {
		remote = store.NewGithubStore(cfg.Github.Owner, cfg.Github.Repo, cfg.Github.Branch, cfg.Github.Token)
	} else {
		logger.Info().Msg("No remote store credentials, persisting to local files only")
	}
	afkStore := store.NewAfkStore("afk.json", filepath.Join(cfg.DataDir, "afk.json"), remote)
	profileStore := store.NewProfileStore("profiles.json", filepath.Join(cfg.DataDir, "profiles.json"), remote)

	// The public chess APIs tolerate a modest request rate
	restrictions := []common.Restriction{{Requests: 10, Duration: 10 * time.Second}}
	chessClient := chessapi.NewClient(restrictions)

	b := bot.NewBot(cfg, afkStore, profileStore, chessClient)
	if err := b.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Bot stopped")
	}
}
