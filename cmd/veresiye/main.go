package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/cli"
	"github.com/aliosmangurbilek/debt-ledger/internal/adapters/repo/sqlite"
	"github.com/aliosmangurbilek/debt-ledger/internal/app"
)

func main() {
	_ = godotenv.Load()

	cfg := app.LoadConfig()

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := sqlite.Open(cfg.DBPath, cfg.DBLog)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to open database")
	}

	application, err := app.NewApp(db, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create app")
	}
	if err := application.Migrate(); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate database")
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander, application.Ledger)

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()

	if err := application.Close(context.Background()); err != nil {
		zlog.Error().Err(err).Msg("failed to close database")
	}
	os.Exit(int(status))
}
