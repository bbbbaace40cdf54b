package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/saeidalz13/battleship-engine/api"
	"github.com/saeidalz13/battleship-engine/db"
	"github.com/saeidalz13/battleship-engine/internal/config"
	"github.com/saeidalz13/battleship-engine/internal/console"
	"github.com/saeidalz13/battleship-engine/internal/loader"
	"github.com/saeidalz13/battleship-engine/internal/logging"
	mb "github.com/saeidalz13/battleship-engine/models/battleship"
)

const (
	modeServe = "serve"
	modePlay  = "play"
	modeAI    = "ai"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] [serve|play|ai]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	mode := modeServe
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.Stage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case modeServe:
		err = serve(ctx, cfg)
	case modePlay:
		err = console.RunSinglePlayer(ctx, consoleOptions(cfg))
	case modeAI:
		err = console.RunAgainstAI(ctx, consoleOptions(cfg))
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, console.ErrInputClosed) {
		log.Fatal().Err(err).Str("mode", mode).Msg("battleship stopped")
	}
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func consoleOptions(cfg *config.Config) console.Options {
	return console.Options{
		In:              os.Stdin,
		Out:             os.Stdout,
		Fleet:           loader.LoadShips(cfg.Game.FleetFile),
		Placement:       loader.LoadPlacement(cfg.Game.PlacementFile),
		PlayerAlgorithm: cfg.PlayerAlgorithm(),
		MaxAttempts:     cfg.Game.MaxAttempts,
		Rng:             newRand(cfg.Game.Seed),
	}
}

func sessionConfig(cfg *config.Config) mb.SessionConfig {
	return mb.SessionConfig{
		BoardSize:   cfg.Game.BoardSize,
		Fleet:       loader.LoadShips(cfg.Game.FleetFile),
		AIAlgorithm: cfg.AIAlgorithm(),
		MaxAttempts: cfg.Game.MaxAttempts,
		Seed:        cfg.Game.Seed,
		Logger:      log.Logger,
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	games := mb.NewBattleshipGameManager(sessionConfig(cfg))

	opts := []api.Option{
		api.WithPort(cfg.Port),
		api.WithStage(cfg.Stage),
		api.WithPlayerPlacement(cfg.PlayerAlgorithm(), loader.LoadPlacement(cfg.Game.PlacementFile)),
	}
	if cfg.DatabaseURL != "" {
		conn := db.MustConnectToDb(cfg.DatabaseURL, cfg.MigrationDir)
		defer conn.Close()
		opts = append(opts, api.WithDb(conn))
	} else {
		log.Info().Msg("no database_url; analytics disabled")
	}

	server := api.NewServer(games, opts...)
	go server.CleanupPeriodically(ctx, cfg.Session.CleanupInterval, cfg.Session.MaxAge)

	// board size, fleet and log level apply to sessions created after the edit
	cfg.Watch(func(next *config.Config) {
		logging.SetLevel(next.LogLevel)
		games.UpdateConfig(sessionConfig(next))
	})

	return server.Run(ctx)
}
