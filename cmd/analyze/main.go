package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/corentings/chess/v2"

	"github.com/iklasky/tactic-trainer/internal/analysis"
	"github.com/iklasky/tactic-trainer/internal/batch"
	"github.com/iklasky/tactic-trainer/internal/chesscom"
	"github.com/iklasky/tactic-trainer/internal/config"
	"github.com/iklasky/tactic-trainer/internal/db"
	"github.com/iklasky/tactic-trainer/internal/engine"
	"github.com/iklasky/tactic-trainer/internal/logger"
	"github.com/iklasky/tactic-trainer/internal/repository/sqlite"
	"github.com/iklasky/tactic-trainer/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Tactic Trainer Batch Analysis Starting")
	log.Info("===========================================")
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("csv_path=%s", cfg.CSVPath)
	log.Debug("stockfish_path=%s depth=%d threads=%d", cfg.StockfishPath, cfg.StockfishDepth, cfg.StockfishThreads)
	log.Debug("workers=%d queue_size=%d", cfg.Workers, cfg.QueueSize)
	log.Debug("usernames=%v games_per_user=%d", cfg.Usernames, cfg.GamesPerUser)

	if len(cfg.Usernames) == 0 {
		log.Error("no usernames configured, set USERNAMES")
		os.Exit(1)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	csvWriter, err := batch.NewCSVWriter(cfg.CSVPath)
	if err != nil {
		log.Error("failed to open csv output: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	runner := &batch.Runner{
		Client:        chesscom.New(),
		Opportunities: sqlite.NewOpportunityRepository(database.DB),
		Games:         sqlite.NewGameRepository(database.DB),
		CSV:           csvWriter,

		Params:  paramsFromConfig(cfg),
		Factory: oracleFactory(cfg),

		Workers:      cfg.Workers,
		QueueSize:    cfg.QueueSize,
		Usernames:    cfg.Usernames,
		GamesPerUser: cfg.GamesPerUser,

		MaxMemoryPercent: cfg.MaxMemoryPercent,
		MonitorInterval:  cfg.MonitorInterval,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(logger.NewContext(ctx, log)); err != nil {
		code := 1
		if errors.Is(err, batch.ErrMemoryPressure) {
			code = 2
			log.Error("run aborted: %v", err)
		} else {
			log.Error("run failed: %v", err)
		}
		// os.Exit skips the deferred closes; flush the sinks here so a
		// hard stop still leaves a complete CSV and a clean database.
		if cerr := csvWriter.Close(); cerr != nil {
			log.Error("failed to close csv output: %v", cerr)
		}
		if cerr := database.Close(); cerr != nil {
			log.Error("failed to close database: %v", cerr)
		}
		os.Exit(code)
	}

	log.Info("===========================================")
	log.Info("Tactic Trainer Batch Analysis Finished")
	log.Info("===========================================")
}

// oracleFactory builds one cached engine per worker. Engines are never
// shared: each worker owns its subprocess and its eval cache.
func oracleFactory(cfg config.Config) worker.Factory {
	return func() (engine.Oracle, error) {
		eng, err := engine.New(engine.Config{
			Path:    cfg.StockfishPath,
			Depth:   cfg.StockfishDepth,
			Threads: cfg.StockfishThreads,
		})
		if err != nil {
			return nil, err
		}
		return engine.NewCached(eng, cfg.EvalCacheSize), nil
	}
}

func paramsFromConfig(cfg config.Config) analysis.Params {
	return analysis.Params{
		MinOpportunityCP: cfg.MinOpportunityCP,
		MaxHorizonPlies:  cfg.MaxHorizonPlies,
		CPPerPawn:        cfg.CPPerPawn,
		PieceValues: map[chess.PieceType]int{
			chess.Pawn:   cfg.PawnValue,
			chess.Knight: cfg.KnightValue,
			chess.Bishop: cfg.BishopValue,
			chess.Rook:   cfg.RookValue,
			chess.Queen:  cfg.QueenValue,
			chess.King:   0,
		},
	}
}
